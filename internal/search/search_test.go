package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codeprism/codeprism/internal/embeddings"
	"github.com/codeprism/codeprism/internal/store"
)

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, mode embeddings.Mode) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }
func (f *fakeEmbedder) Name() string    { return "fake" }

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "codeprism.db"), 3)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	emb := &fakeEmbedder{vec: []float32{1, 0, 0}}
	return &Engine{Store: s, Embedder: emb}, s
}

func TestSearchCacheHitAtThreshold(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	id, _, err := s.UpsertCard(ctx, store.CardRow{
		Flow: "patient", Title: "patient flow", Content: "patient body",
		CardType: "flow", ContentHash: "h1",
	}, []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.RecordMetrics(ctx, "patient lookup", []float32{1, 0, 0}, []int64{id}, false); err != nil {
		t.Fatalf("seeding metrics: %v", err)
	}

	results, err := e.Search(ctx, "anything else", "", 5, false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || !results[0].CacheHit {
		t.Fatalf("expected a cache hit reusing the prior card set, got %+v", results)
	}
	if results[0].CardID != id {
		t.Errorf("expected cached card id %d, got %d", id, results[0].CardID)
	}
}

func TestSearchBranchFilterExcludesNonMatching(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	matching, _, err := s.UpsertCard(ctx, store.CardRow{
		Flow: "billing", Title: "billing flow", Content: "billing body",
		CardType: "flow", ContentHash: "h1", ValidBranches: []string{"main"},
	}, []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("upsert matching: %v", err)
	}
	nonMatching, _, err := s.UpsertCard(ctx, store.CardRow{
		Flow: "experimental", Title: "experimental flow", Content: "experimental body",
		CardType: "flow", ContentHash: "h2", ValidBranches: []string{"feature/x"},
	}, []float32{0, 1, 0})
	if err != nil {
		t.Fatalf("upsert non-matching: %v", err)
	}

	filtered, err := e.filterByBranch(ctx, []Result{
		{CardID: matching}, {CardID: nonMatching},
	}, "main")
	if err != nil {
		t.Fatalf("filterByBranch: %v", err)
	}
	if len(filtered) != 1 || filtered[0].CardID != matching {
		t.Errorf("expected only the main-branch card to survive, got %+v", filtered)
	}
}

func TestFuseBoostsDualPresence(t *testing.T) {
	vec := []store.VectorMatch{{CardID: 1, Similarity: 0.5}, {CardID: 2, Similarity: 0.9}}
	fts := []store.FTSMatch{{CardID: 1, Rank: 0.1}}

	results := fuse(vec, fts, false)

	var dual, semOnly *Result
	for i := range results {
		switch results[i].CardID {
		case 1:
			dual = &results[i]
		case 2:
			semOnly = &results[i]
		}
	}
	if dual == nil || semOnly == nil {
		t.Fatalf("expected both cards present, got %+v", results)
	}
	if dual.Source != SourceBoth {
		t.Errorf("expected card 1 tagged SourceBoth, got %v", dual.Source)
	}
	if semOnly.Source != SourceSemantic {
		t.Errorf("expected card 2 tagged SourceSemantic, got %v", semOnly.Source)
	}
}

func TestSearchEmptyQueryReturnsNoResultsAndNoMetricsRow(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := e.Search(ctx, q, "", 5, false)
		if err != nil {
			t.Fatalf("search(%q): %v", q, err)
		}
		if results != nil {
			t.Errorf("search(%q): expected nil results, got %+v", q, results)
		}
	}

	recent, err := s.RecentMetricsWithEmbedding(ctx, semanticCacheSize)
	if err != nil {
		t.Fatalf("loading metrics: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("expected no metrics rows written for an empty query, got %d", len(recent))
	}
}

func TestDiversifyReturnsAllWhenUnderLimit(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	candidates := []Result{{CardID: 1, Score: 0.9}, {CardID: 2, Score: 0.8}}
	out, err := e.diversify(ctx, candidates, 5)
	if err != nil {
		t.Fatalf("diversify: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("expected both candidates returned under limit, got %d", len(out))
	}
}
