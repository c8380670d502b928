package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeprism/codeprism/internal/search"
	"github.com/codeprism/codeprism/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Hybrid search the card index",
	Long:  `Runs the hybrid FTS5 + vector search pipeline against a natural-language query and returns the highest-ranked cards.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 5, "maximum number of results")
	queryCmd.Flags().String("branch", "", "restrict results to cards valid on this branch")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	queryCmd.Flags().Bool("debug", false, "include per-stage scoring detail")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	branch, _ := cmd.Flags().GetString("branch")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	debug, _ := cmd.Flags().GetBool("debug")

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

	engine := &search.Engine{Store: st, Embedder: embedder}
	results, err := engine.Search(ctx, queryText, branch, limit, debug)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.CardID
	}
	rows, err := st.GetCards(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading cards: %w", err)
	}

	if jsonOutput {
		return printQueryResultsJSON(results, rows)
	}
	printQueryResultsTable(results, rows)
	return nil
}

type queryResultJSON struct {
	Rank     int      `json:"rank"`
	Score    float64  `json:"score"`
	Source   string   `json:"source"`
	Title    string   `json:"title"`
	Flow     string   `json:"flow"`
	CardType string   `json:"card_type"`
	Tier     string   `json:"tier"`
	Files    []string `json:"source_files"`
	Summary  string   `json:"summary"`
}

func printQueryResultsJSON(results []search.Result, rows map[int64]*store.CardRow) error {
	var out []queryResultJSON
	for i, r := range results {
		c := rows[r.CardID]
		if c == nil {
			continue
		}
		out = append(out, queryResultJSON{
			Rank:     i + 1,
			Score:    r.Score,
			Source:   string(r.Source),
			Title:    c.Title,
			Flow:     c.Flow,
			CardType: c.CardType,
			Tier:     c.Tier,
			Files:    c.SourceFiles,
			Summary:  truncate(c.Content, 200),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printQueryResultsTable(results []search.Result, rows map[int64]*store.CardRow) {
	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		c := rows[r.CardID]
		if c == nil {
			continue
		}
		cacheTag := ""
		if r.CacheHit {
			cacheTag = " (cache)"
		}
		fmt.Printf("  %d. [%.3f/%s] %s%s\n", i+1, r.Score, r.Source, c.Title, cacheTag)
		fmt.Printf("     Type: %s   Flow: %s   Tier: %s\n", c.CardType, c.Flow, c.Tier)
		fmt.Printf("     %s\n\n", truncate(c.Content, 160))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
