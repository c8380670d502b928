package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeprism/codeprism/internal/store"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "List detected flows and their card/heat rollups",
	Long:  `Implements list_flows: one row per flow with card count, file count, stale count, repos, mean heat, and whether it's a page flow.`,
	Args:  cobra.NoArgs,
	RunE:  runFlows,
}

func init() {
	rootCmd.AddCommand(flowsCmd)
}

func runFlows(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	summaries, err := st.ListFlows(ctx)
	if err != nil {
		return fmt.Errorf("listing flows: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No flows indexed yet.")
		return nil
	}

	for _, f := range summaries {
		pageTag := ""
		if f.IsPageFlow {
			pageTag = " [page]"
		}
		fmt.Printf("%s%s\n", f.Name, pageTag)
		fmt.Printf("  cards=%d files=%d stale=%d heat=%.2f repos=%s\n\n",
			f.CardCount, f.FileCount, f.StaleCount, f.AvgHeat, strings.Join(f.Repos, ","))
	}
	return nil
}
