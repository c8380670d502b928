package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codeprism/codeprism/internal/classifier"
	"github.com/codeprism/codeprism/internal/gitutil"
	"github.com/codeprism/codeprism/internal/orchestrator"
	"github.com/codeprism/codeprism/internal/parser"
	"github.com/codeprism/codeprism/internal/store"
	syncengine "github.com/codeprism/codeprism/internal/sync"
	"github.com/codeprism/codeprism/internal/walker"
)

var syncCmd = &cobra.Command{
	Use:   "sync [repo-name] [path]",
	Short: "Propagate a branch checkout or merge into the card index",
	Long: `Classifies the current branch, computes changed files since the
last sync, reparses them, marks their cards stale, and — on a full-level
branch — triggers cross-repo propagation.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("event", "checkout", "sync event type: checkout, merge, pull, rebase")
	syncCmd.Flags().String("branch", "", "branch name (defaults to the repo's current HEAD)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repoName := "default"
	rootDir := "."
	if len(args) >= 1 {
		repoName = args[0]
	}
	if len(args) >= 2 {
		rootDir = args[1]
	} else if wd, err := os.Getwd(); err == nil {
		rootDir = wd
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	st, err := store.Open(storePath(cfg), embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	git := gitutil.NewClient()
	repoHandle, err := git.Open(rootDir)
	if err != nil {
		return fmt.Errorf("opening git repo at %s: %w", rootDir, err)
	}

	branch, _ := cmd.Flags().GetString("branch")
	if branch == "" {
		if head, err := repoHandle.Head(); err == nil && head.Name().IsBranch() {
			branch = head.Name().Short()
		}
	}
	eventType, _ := cmd.Flags().GetString("event")

	registry := parser.NewRegistry()
	reparse := func(ctx context.Context, repo, path string) (string, string, string, error) {
		content, err := os.ReadFile(filepath.Join(rootDir, path))
		if err != nil {
			return "", "", "", err
		}
		registry.Parse(content, path)
		role := classifier.Classify(path, nil)
		sum := sha256.Sum256(content)
		return walker.DetectLanguage(path), string(role), hex.EncodeToString(sum[:]), nil
	}

	llmProvider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}
	o := orchestrator.New(st, embedder, llmProvider, cfg)
	fullResync := func(ctx context.Context, repo string, changedFiles []string) error {
		_, err := o.RunRepo(ctx, orchestrator.RepoConfig{Name: repo, RootDir: rootDir, Branch: branch})
		return err
	}

	engine := &syncengine.Engine{Store: st, Git: git, Reparse: reparse, FullResync: fullResync}
	if eventType == "checkout" {
		bc, err := engine.HandleCheckout(ctx, repoName, branch, "")
		if err != nil {
			return fmt.Errorf("handling checkout: %w", err)
		}
		fmt.Printf("Checkout recorded: branch=%s ticket=%s hint=%q\n", bc.Branch, bc.TicketID, bc.ContextHint)
		return nil
	}

	// HandleSyncEvent logs its own failures and never fails the call: git
	// hooks must not block a developer's merge or checkout on a sync error.
	result, _ := engine.HandleSyncEvent(ctx, repoName, branch, eventType, repoHandle)

	fmt.Printf("Sync complete: level=%s indexed=%d invalidated=%d\n", result.Level, result.Indexed, result.Invalidated)
	return nil
}
