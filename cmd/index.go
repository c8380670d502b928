package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeprism/codeprism/internal/orchestrator"
	"github.com/codeprism/codeprism/internal/progress"
	"github.com/codeprism/codeprism/internal/store"
)

var indexCmd = &cobra.Command{
	Use:   "index [repo-name] [path]",
	Short: "Walk a repository and (re)build its card index",
	Long: `Scans a repository's source tree, parses and classifies every
file, builds the cross-file relationship graph, detects flows, generates
cards, embeds them, and persists everything to the SQLite store.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Bool("dry-run", false, "estimate cost without making API calls")
	indexCmd.Flags().Int("concurrency", 0, "max parallel parse/LLM calls (overrides config)")
	indexCmd.Flags().String("branch", "", "branch name recorded against generated cards")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 0 {
		cfg.MaxConcurrency = concurrency
	}

	repo := orchestrator.RepoConfig{Name: "default", Branch: "main"}
	if len(args) >= 1 {
		repo.Name = args[0]
	}
	if len(args) >= 2 {
		repo.RootDir = args[1]
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		repo.RootDir = wd
	}
	if branch, _ := cmd.Flags().GetString("branch"); branch != "" {
		repo.Branch = branch
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		o := orchestrator.New(nil, embedder, nil, cfg)
		estimate, err := o.DryRun(ctx, repo)
		if err != nil {
			return fmt.Errorf("dry run failed: %w", err)
		}
		printCostEstimate(estimate)
		return nil
	}

	llmProvider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	st, err := store.Open(storePath(cfg), embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if err := stampInstanceID(ctx, st); err != nil {
		return fmt.Errorf("stamping instance profile: %w", err)
	}
	warnOnEmbeddingDrift(ctx, st, embedder.Name())

	o := orchestrator.New(st, embedder, llmProvider, cfg)
	var reporter progress.Reporter
	if verbose {
		reporter = progress.NewReporter()
		started := false
		o.SetProgressFunc(func(processed, total int, currentFile string) {
			if !started {
				reporter.Start(total)
				started = true
			}
			reporter.Update(processed, currentFile)
		})
	}

	result, err := o.RunRepo(ctx, repo)
	if reporter != nil {
		reporter.Finish()
	}
	if err != nil {
		return fmt.Errorf("indexing %s: %w", repo.Name, err)
	}
	if err := st.SetSearchConfig(ctx, "embedding_model", embedder.Name()); err != nil {
		return fmt.Errorf("recording search config: %w", err)
	}

	duration := time.Since(start)
	fmt.Println()
	fmt.Println("Indexing complete.")
	fmt.Printf("  Run ID:           %s\n", result.RunID)
	fmt.Printf("  Files processed:  %d\n", result.FilesProcessed)
	fmt.Printf("  Files failed:     %d\n", result.FilesFailed)
	fmt.Printf("  Cards written:    %d\n", result.CardsWritten)
	fmt.Printf("  Cards unchanged:  %d\n", result.CardsUnchanged)
	fmt.Printf("  Duration:         %s\n", duration.Round(time.Millisecond))

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nWarnings (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %v\n", e)
		}
	}
	return nil
}

func printCostEstimate(estimate *orchestrator.CostEstimate) {
	fmt.Println("Cost Estimate (dry run)")
	fmt.Println("=======================")
	fmt.Printf("  Files to process:  %d\n", estimate.TotalFiles)
	fmt.Printf("  Estimated tokens:  %d\n", estimate.TotalTokensEstimate)
	fmt.Printf("  Estimated total:   $%.4f\n", estimate.EstimatedCost)
	fmt.Println()
	fmt.Println("  Breakdown:")
	for op, cost := range estimate.CostBreakdown {
		fmt.Printf("    %-12s $%.4f\n", op, cost)
	}
}
