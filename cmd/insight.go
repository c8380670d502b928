package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeprism/codeprism/internal/cards"
	"github.com/codeprism/codeprism/internal/classifier"
	"github.com/codeprism/codeprism/internal/embeddings"
	"github.com/codeprism/codeprism/internal/store"
)

var insightCmd = &cobra.Command{
	Use:   "insight [flow] [title] [content]",
	Short: "Save a developer-authored note as a dev_insight card",
	Long:  `Implements save_insight: writes a dev_insight card tied to a flow and, optionally, a set of files.`,
	Args:  cobra.ExactArgs(3),
	RunE:  runInsight,
}

func init() {
	insightCmd.Flags().StringSlice("files", nil, "comma-separated repo:path file references the insight touches")
	rootCmd.AddCommand(insightCmd)
}

func runInsight(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	flow, title, content := args[0], args[1], args[2]

	fileRefs, _ := cmd.Flags().GetStringSlice("files")
	files := make([]cards.SourceFile, 0, len(fileRefs))
	for _, ref := range fileRefs {
		repo, path := "", ref
		if idx := strings.Index(ref, ":"); idx >= 0 {
			repo, path = ref[:idx], ref[idx+1:]
		}
		files = append(files, cards.SourceFile{Path: path, Repo: repo, Role: classifier.RoleDomain})
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

	card := cards.GenerateDevInsightCard(flow, title, content, files)

	vectors, err := embedder.Embed(ctx, []string{card.Content}, embeddings.ModeDocument)
	if err != nil {
		return fmt.Errorf("embedding insight: %w", err)
	}

	id, _, err := st.UpsertCard(ctx, store.CardRow{
		Flow:          card.Flow,
		Title:         card.Title,
		Content:       card.Content,
		CardType:      string(card.CardType),
		Tier:          string(card.Tier),
		SourceFiles:   card.SourceFiles,
		SourceRepos:   card.SourceRepos,
		Tags:          card.Tags,
		Identifiers:   card.Identifiers,
		ValidBranches: card.ValidBranches,
		CommitSHA:     card.CommitSHA,
		ContentHash:   card.ContentHash,
	}, vectors[0])
	if err != nil {
		return fmt.Errorf("writing insight card: %w", err)
	}

	fmt.Printf("Saved insight %d (flow=%s)\n", id, flow)
	return nil
}
