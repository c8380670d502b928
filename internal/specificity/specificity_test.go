package specificity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codeprism/codeprism/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "codeprism.db"), 3)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSpecificityOrderingFavorsOrthogonalCard mirrors spec.md §8 scenario
// #6: two identical embeddings near e1, one orthogonal, expect the
// orthogonal card to score strictly higher.
func TestSpecificityOrderingFavorsOrthogonalCard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, _, err := s.UpsertCard(ctx, store.CardRow{Flow: "a", Title: "a", Content: "a", CardType: "flow", ContentHash: "h1"}, []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("upsert 1: %v", err)
	}
	id2, _, err := s.UpsertCard(ctx, store.CardRow{Flow: "b", Title: "b", Content: "b", CardType: "flow", ContentHash: "h2"}, []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("upsert 2: %v", err)
	}
	id3, _, err := s.UpsertCard(ctx, store.CardRow{Flow: "c", Title: "c", Content: "c", CardType: "flow", ContentHash: "h3"}, []float32{0, 1, 0})
	if err != nil {
		t.Fatalf("upsert 3: %v", err)
	}

	e := &Engine{Store: s}
	if err := e.Recompute(ctx); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	c1, _ := s.GetCard(ctx, id1)
	c2, _ := s.GetCard(ctx, id2)
	c3, _ := s.GetCard(ctx, id3)

	if c3.SpecificityScore <= c1.SpecificityScore || c3.SpecificityScore <= c2.SpecificityScore {
		t.Errorf("expected orthogonal card to score higher: c1=%v c2=%v c3=%v",
			c1.SpecificityScore, c2.SpecificityScore, c3.SpecificityScore)
	}
	for _, score := range []float64{c1.SpecificityScore, c2.SpecificityScore, c3.SpecificityScore} {
		if score < 0 || score > 1 {
			t.Errorf("expected specificity in [0,1], got %v", score)
		}
	}
}

func TestRecomputeHeatSaturatesWithUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cold, _, err := s.UpsertCard(ctx, store.CardRow{Flow: "a", Title: "a", Content: "a", CardType: "flow", ContentHash: "h1"}, []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("upsert cold: %v", err)
	}
	hot, _, err := s.UpsertCard(ctx, store.CardRow{Flow: "b", Title: "b", Content: "b", CardType: "flow", ContentHash: "h2"}, []float32{0, 1, 0})
	if err != nil {
		t.Fatalf("upsert hot: %v", err)
	}
	for i := 0; i < 50; i++ {
		if err := s.IncrementUsage(ctx, []int64{hot}); err != nil {
			t.Fatalf("incrementing usage: %v", err)
		}
	}

	e := &Engine{Store: s}
	if err := e.Recompute(ctx); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	coldCard, _ := s.GetCard(ctx, cold)
	hotCard, _ := s.GetCard(ctx, hot)
	if hotCard.HeatScore <= coldCard.HeatScore {
		t.Errorf("expected heavily-used card to run hotter: cold=%v hot=%v", coldCard.HeatScore, hotCard.HeatScore)
	}
	if hotCard.HeatScore < 0 || hotCard.HeatScore > 1 || coldCard.HeatScore < 0 || coldCard.HeatScore > 1 {
		t.Errorf("expected heat in [0,1], got cold=%v hot=%v", coldCard.HeatScore, hotCard.HeatScore)
	}
}

func TestInvalidateClearsCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, _, err := s.UpsertCard(ctx, store.CardRow{Flow: "a", Title: "a", Content: "a", CardType: "flow", ContentHash: "h1"}, []float32{1, 0, 0}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	e := &Engine{Store: s}
	if err := e.Recompute(ctx); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if _, _, live := e.Centroids(); !live {
		t.Fatal("expected cache to be live after recompute")
	}

	e.Invalidate()
	if _, _, live := e.Centroids(); live {
		t.Error("expected cache to be cleared after Invalidate")
	}
}
