// Package specificity implements C9: after a reindex, recompute how
// distinguishing each card's embedding is relative to a global centroid
// and its own repo's centroid, blending both into specificity_score.
package specificity

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/codeprism/codeprism/internal/store"
)

const (
	globalWeight = 0.4
	repoWeight   = 0.6
	noRepoDist   = 0.5

	// heatHalfLife is how fast a single card_interactions event decays:
	// an event this many days old contributes half its original weight.
	heatHalfLife = 14 * 24 * time.Hour
	// heatSaturation is the decayed-weight sum at which heat_score
	// approaches 1; a handful of recent hits shouldn't already read hot.
	heatSaturation = 8.0
)

// Engine recomputes specificity scores and caches the centroids used to
// do so, invalidating the cache after every recompute.
type Engine struct {
	Store *store.Store

	mu        sync.Mutex
	global    []float64
	perRepo   map[string][]float64
	cacheLive bool
}

// Recompute rebuilds the global and per-repo centroids from every card
// embedding currently in the store, scores each card, and writes all
// specificity_score updates in a single transaction.
func (e *Engine) Recompute(ctx context.Context) error {
	rows, err := e.Store.AllCardEmbeddings(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	global, perRepo := computeCentroids(rows)

	distG := make(map[int64]float64, len(rows))
	distR := make(map[int64]float64, len(rows))
	for _, r := range rows {
		distG[r.CardID] = 1 - cosine(r.Embedding, global)
		distR[r.CardID] = meanRepoDistance(r, perRepo)
	}

	normG := minMaxNormalize(distG)
	normR := minMaxNormalize(distR)

	scores := make(map[int64]float64, len(rows))
	for _, r := range rows {
		scores[r.CardID] = clamp01(globalWeight*normG[r.CardID] + repoWeight*normR[r.CardID])
	}

	if err := e.Store.BatchUpdateSpecificity(ctx, scores); err != nil {
		return err
	}
	if err := e.recomputeHeat(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	e.global = global
	e.perRepo = perRepo
	e.cacheLive = true
	e.mu.Unlock()
	return nil
}

// recomputeHeat rebuilds heat_score for every card as an exponential
// moving average over its card_interactions: each event's weight decays
// with age (half-life heatHalfLife), and the decayed sum saturates
// toward 1 via 1-e^(-x/heatSaturation). Cards with no interactions never
// appear in the sum and settle back to 0.
func (e *Engine) recomputeHeat(ctx context.Context) error {
	rows, err := e.Store.AllCardInteractions(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	weight := make(map[int64]float64)
	for _, r := range rows {
		age := now.Sub(r.CreatedAt)
		if age < 0 {
			age = 0
		}
		weight[r.CardID] += math.Exp(-age.Hours() / heatHalfLife.Hours() * math.Ln2)
	}
	scores := make(map[int64]float64, len(weight))
	for id, w := range weight {
		scores[id] = clamp01(1 - math.Exp(-w/heatSaturation))
	}
	return e.Store.BatchUpdateHeat(ctx, scores)
}

// Invalidate drops the cached centroids; the next read recomputes them.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cacheLive = false
	e.global = nil
	e.perRepo = nil
}

// Centroids returns a copy-on-read snapshot of the cached centroids, and
// whether the cache is currently populated.
func (e *Engine) Centroids() (global []float64, perRepo map[string][]float64, live bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cacheLive {
		return nil, nil, false
	}
	global = append([]float64(nil), e.global...)
	perRepo = make(map[string][]float64, len(e.perRepo))
	for k, v := range e.perRepo {
		perRepo[k] = append([]float64(nil), v...)
	}
	return global, perRepo, true
}

func meanRepoDistance(r store.CardEmbeddingRow, perRepo map[string][]float64) float64 {
	if len(r.SourceRepos) == 0 {
		return noRepoDist
	}
	var sum float64
	var n int
	for _, repo := range r.SourceRepos {
		centroid, ok := perRepo[repo]
		if !ok {
			continue
		}
		sum += 1 - cosine(r.Embedding, centroid)
		n++
	}
	if n == 0 {
		return noRepoDist
	}
	return sum / float64(n)
}

func computeCentroids(rows []store.CardEmbeddingRow) ([]float64, map[string][]float64) {
	dim := len(rows[0].Embedding)
	global := make([]float64, dim)
	repoSum := make(map[string][]float64)
	repoCount := make(map[string]int)

	for _, r := range rows {
		addInto(global, r.Embedding)
		for _, repo := range r.SourceRepos {
			if _, ok := repoSum[repo]; !ok {
				repoSum[repo] = make([]float64, dim)
			}
			addInto(repoSum[repo], r.Embedding)
			repoCount[repo]++
		}
	}

	scale(global, float64(len(rows)))
	perRepo := make(map[string][]float64, len(repoSum))
	for repo, sum := range repoSum {
		scale(sum, float64(repoCount[repo]))
		perRepo[repo] = sum
	}
	return global, perRepo
}

func addInto(dst []float64, v []float32) {
	for i, f := range v {
		dst[i] += float64(f)
	}
}

func scale(v []float64, n float64) {
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}

func cosine(a []float32, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		fa := float64(a[i])
		dot += fa * b[i]
		na += fa * fa
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func minMaxNormalize(m map[int64]float64) map[int64]float64 {
	out := make(map[int64]float64, len(m))
	if len(m) == 0 {
		return out
	}
	min, max := 0.0, 0.0
	first := true
	for _, v := range m {
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	for id, v := range m {
		if span == 0 {
			out[id] = 1
			continue
		}
		out[id] = (v - min) / span
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
