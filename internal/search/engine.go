package search

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/codeprism/codeprism/internal/embeddings"
	"github.com/codeprism/codeprism/internal/store"
)

const (
	defaultLimit       = 5
	fetchMultiplier    = 3
	semanticCacheSize  = 50
	semanticCacheMatch = 0.92
	semanticWeight     = 0.7
	keywordWeight      = 0.3
	dualPresenceBoost  = 1.2
	mmrLambda          = 0.7
	rerankCap          = 30
	rerankHybridWeight = 0.4
	rerankCEWeight     = 0.6
)

// Engine drives the C8 pipeline over a store and embedder, with an
// optional cross-encoder for the final rerank stage.
type Engine struct {
	Store    *store.Store
	Embedder embeddings.Embedder
	Reranker CrossEncoder // nil disables stage 6
}

// Search runs the fixed 7-step pipeline and returns up to limit results,
// ties broken by ascending card.id.
func (e *Engine) Search(ctx context.Context, query, branch string, limit int, debug bool) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	queryEmbedding, err := e.Embedder.Embed(ctx, []string{query}, embeddings.ModeQuery)
	if err != nil {
		return nil, err
	}
	qVec := queryEmbedding[0]

	// Step 1: semantic cache.
	if hit, ok, err := e.checkCache(ctx, qVec); err != nil {
		return nil, err
	} else if ok {
		return hit, nil
	}

	fetchLimit := limit * fetchMultiplier

	// Step 2: parallel retrieval.
	vecResults, ftsResults, err := e.retrieve(ctx, query, qVec, fetchLimit)
	if err != nil {
		return nil, err
	}

	// Step 3: fusion.
	fused := fuse(vecResults, ftsResults, debug)

	// Step 4: branch filter.
	fused, err = e.filterByBranch(ctx, fused, branch)
	if err != nil {
		return nil, err
	}

	// Step 5: MMR diversification.
	selected, err := e.diversify(ctx, fused, limit)
	if err != nil {
		return nil, err
	}

	// Step 6: optional cross-encoder rerank.
	if e.Reranker != nil {
		selected, err = e.rerank(ctx, query, selected)
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Score != selected[j].Score {
			return selected[i].Score > selected[j].Score
		}
		return selected[i].CardID < selected[j].CardID
	})
	if len(selected) > limit {
		selected = selected[:limit]
	}

	// Step 7: usage accounting.
	ids := make([]int64, len(selected))
	for i, r := range selected {
		ids[i] = r.CardID
	}
	if err := e.Store.RecordMetrics(ctx, query, qVec, ids, false); err != nil {
		return nil, err
	}

	return selected, nil
}

func (e *Engine) checkCache(ctx context.Context, qVec []float32) ([]Result, bool, error) {
	recent, err := e.Store.RecentMetricsWithEmbedding(ctx, semanticCacheSize)
	if err != nil {
		return nil, false, err
	}
	for _, m := range recent {
		if cosineSim(qVec, m.QueryEmbedding) >= semanticCacheMatch {
			results := make([]Result, len(m.CardIDs))
			for i, id := range m.CardIDs {
				results[i] = Result{CardID: id, CacheHit: true}
			}
			return results, true, nil
		}
	}
	return nil, false, nil
}

func (e *Engine) retrieve(ctx context.Context, query string, qVec []float32, fetchLimit int) ([]store.VectorMatch, []store.FTSMatch, error) {
	vecResults, err := e.Store.SearchVectors(qVec, fetchLimit)
	if err != nil {
		return nil, nil, err
	}
	sanitized := store.SanitizeFTS5Query(query)
	ftsResults, err := e.Store.SearchFTS(ctx, sanitized, fetchLimit)
	if err != nil {
		return nil, nil, err
	}
	return vecResults, ftsResults, nil
}

func (e *Engine) filterByBranch(ctx context.Context, results []Result, branch string) ([]Result, error) {
	if branch == "" {
		return results, nil
	}
	var out []Result
	for _, r := range results {
		c, err := e.Store.GetCard(ctx, r.CardID)
		if err != nil {
			continue
		}
		if c.ValidBranches != nil && !contains(c.ValidBranches, branch) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func cosineSim(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
