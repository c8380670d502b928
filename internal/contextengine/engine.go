package contextengine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/codeprism/codeprism/internal/llm"
	"github.com/codeprism/codeprism/internal/search"
	"github.com/codeprism/codeprism/internal/store"
	syncengine "github.com/codeprism/codeprism/internal/sync"
)

const (
	bundleLimit      = 8
	perQueryLimit    = 5
	maxIdentifiers   = 3
	hydePromptFormat = `Write a short, concrete passage (3-5 sentences) describing the code that would answer this question, as if it were documentation excerpted straight from the relevant file. Do not hedge or mention that you are guessing.

Question: %s`
)

// Engine resolves context() requests against the hybrid search pipeline.
type Engine struct {
	Search   *search.Engine
	Sync     *syncengine.Engine
	LLM      llm.Provider // nil disables HyDE expansion, falling back to the raw description
	Model    string
	Reranker search.CrossEncoder // nil disables the final rerank pass
}

// Context resolves the active description (explicit, or the repo's
// BranchContext when empty), expands it HyDE-style, unions that with
// entity-keyword searches for identifiers named in the description, and
// reranks the merged set before rendering a MarkdownBundle.
func (e *Engine) Context(ctx context.Context, repo, description, branch string) (MarkdownBundle, error) {
	branchHint := ""
	if strings.TrimSpace(description) == "" {
		if e.Sync != nil {
			bc, err := e.Sync.ActiveContext(ctx, repo)
			if err == nil && bc.ContextHint != "" {
				description = bc.ContextHint
				branchHint = bc.Branch
			}
		}
	}

	bundle := MarkdownBundle{Query: description, BranchHint: branchHint}
	if strings.TrimSpace(description) == "" {
		bundle.Markdown = "No description given and no active branch context to fall back on."
		return bundle, nil
	}

	expanded := e.expandHyDE(ctx, description)
	merged := map[int64]search.Result{}

	primary, err := e.Search.Search(ctx, expanded, branch, bundleLimit, false)
	if err != nil {
		return bundle, fmt.Errorf("primary search: %w", err)
	}
	mergeInto(merged, primary)

	for _, id := range extractIdentifiers(description, maxIdentifiers) {
		hits, err := e.Search.Search(ctx, id, branch, perQueryLimit, false)
		if err != nil {
			continue // one bad identifier query never sinks the whole bundle
		}
		mergeInto(merged, hits)
	}

	results := make([]search.Result, 0, len(merged))
	for _, r := range merged {
		results = append(results, r)
	}

	rows, err := e.cardRows(ctx, results)
	if err != nil {
		return bundle, fmt.Errorf("loading cards: %w", err)
	}

	if e.Reranker != nil {
		rerank(expanded, results, rows, e.Reranker)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CardID < results[j].CardID
	})
	if len(results) > bundleLimit {
		results = results[:bundleLimit]
	}

	for _, r := range results {
		c := rows[r.CardID]
		if c == nil {
			continue
		}
		bundle.Sections = append(bundle.Sections, CardSection{
			CardID: r.CardID, Title: c.Title, CardType: c.CardType,
			Flow: c.Flow, Files: c.SourceFiles, Content: c.Content, Score: r.Score,
		})
	}
	bundle.Markdown = renderMarkdown(bundle)
	return bundle, nil
}

// expandHyDE asks the configured LLM for a hypothetical passage that
// would answer description, on the theory that it embeds closer to the
// real documentation than the bare question does. Falls back to the
// description itself when no LLM is configured or the call fails.
func (e *Engine) expandHyDE(ctx context.Context, description string) string {
	if e.LLM == nil {
		return description
	}
	resp, err := e.LLM.Complete(ctx, llm.CompletionRequest{
		Model:    e.Model,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(hydePromptFormat, description)}},
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		return description
	}
	return resp.Content
}

var identifierRe = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]*(?:[A-Z][a-z0-9]*)+|[a-z]+(?:_[a-z0-9]+)+)\b`)

// extractIdentifiers pulls CamelCase and snake_case tokens out of a free
// text description — the candidates a developer's question is most
// likely to name an actual symbol with — capped at max, in order of
// first appearance, deduplicated.
func extractIdentifiers(description string, max int) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range identifierRe.FindAllString(description, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
		if len(out) >= max {
			break
		}
	}
	return out
}

// mergeInto folds hits into acc by CardID, keeping the higher score when
// a card surfaces from more than one sub-query.
func mergeInto(acc map[int64]search.Result, hits []search.Result) {
	for _, h := range hits {
		if existing, ok := acc[h.CardID]; !ok || h.Score > existing.Score {
			acc[h.CardID] = h
		}
	}
}

func (e *Engine) cardRows(ctx context.Context, results []search.Result) (map[int64]*store.CardRow, error) {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.CardID
	}
	return e.Search.Store.GetCards(ctx, ids)
}

// rerank rescoes the merged set against the reranker's (query, document)
// judgment. Cards missing from rows (a stale CardID between the search
// and the load) keep their original fused score.
func rerank(query string, results []search.Result, rows map[int64]*store.CardRow, ce search.CrossEncoder) {
	for i, r := range results {
		c := rows[r.CardID]
		if c == nil {
			continue
		}
		score, err := ce.Score(query, c.Title+"\n"+c.Content)
		if err != nil {
			continue
		}
		results[i].Score = score
	}
}
