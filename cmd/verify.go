package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/codeprism/codeprism/internal/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [card-id]",
	Short: "Mark a card as human-verified",
	Long:  `Bumps a card's verified_at and verification_count, and logs a verify interaction that feeds its heat_score.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cardID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid card id %q: %w", args[0], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	st, err := store.Open(storePath(cfg), embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("opening store: %w\nRun `codeprism index` first to build the card index", err)
	}
	defer st.Close()

	ok, err := st.VerifyCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("verifying card: %w", err)
	}
	if !ok {
		return fmt.Errorf("no card with id %d", cardID)
	}

	fmt.Printf("Card %d verified.\n", cardID)
	return nil
}
