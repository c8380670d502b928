package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeprism/codeprism/internal/contextengine"
	"github.com/codeprism/codeprism/internal/search"
	"github.com/codeprism/codeprism/internal/store"
	syncengine "github.com/codeprism/codeprism/internal/sync"
)

var contextCmd = &cobra.Command{
	Use:   "context [description]",
	Short: "Resolve what's going on here into a markdown bundle",
	Long: `Expands a description HyDE-style, unions it with entity-keyword
searches for identifiers named in the description, and renders the
highest-ranked cards as a markdown bundle. With no description, falls
back to the repo's active BranchContext from the last sync/checkout.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().String("repo", "default", "repo name to resolve active branch context against")
	contextCmd.Flags().String("branch", "", "restrict results to cards valid on this branch")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	description := ""
	if len(args) == 1 {
		description = args[0]
	}

	repo, _ := cmd.Flags().GetString("repo")
	branch, _ := cmd.Flags().GetString("branch")

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
	warnOnEmbeddingDrift(ctx, st, embedder.Name())

	llmProvider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}

	engine := &contextengine.Engine{
		Search: &search.Engine{Store: st, Embedder: embedder},
		Sync:   &syncengine.Engine{Store: st},
		LLM:    llmProvider,
		Model:  cfg.LLMModel,
	}

	bundle, err := engine.Context(ctx, repo, description, branch)
	if err != nil {
		return fmt.Errorf("resolving context: %w", err)
	}
	fmt.Println(bundle.Markdown)
	return nil
}
