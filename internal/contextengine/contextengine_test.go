package contextengine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/codeprism/codeprism/internal/embeddings"
	"github.com/codeprism/codeprism/internal/llm"
	"github.com/codeprism/codeprism/internal/search"
	"github.com/codeprism/codeprism/internal/store"
	syncengine "github.com/codeprism/codeprism/internal/sync"
)

var errProviderDown = errors.New("provider unavailable")

type fakeEmbedder struct{ vec []float32 }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, mode embeddings.Mode) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }
func (f *fakeEmbedder) Name() string    { return "fake" }

type fakeLLM struct {
	content string
	err     error
	calls   int
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}
func (f *fakeLLM) Name() string { return "fake" }

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "codeprism.db"), 3)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	emb := &fakeEmbedder{vec: []float32{1, 0, 0}}
	se := &search.Engine{Store: s, Embedder: emb}
	sync := &syncengine.Engine{Store: s}
	return &Engine{Search: se, Sync: sync}, s
}

func TestContextFallsBackToBranchHintWhenDescriptionEmpty(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Sync.HandleCheckout(ctx, "billing-api", "feature/INV-42-refund-flow", ""); err != nil {
		t.Fatalf("seeding checkout: %v", err)
	}
	if _, _, err := s.UpsertCard(ctx, store.CardRow{
		Flow: "refund flow", Title: "refund flow", Content: "refund body",
		CardType: "flow", ContentHash: "h1",
	}, []float32{1, 0, 0}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	bundle, err := e.Context(ctx, "billing-api", "", "")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if bundle.BranchHint != "feature/INV-42-refund-flow" {
		t.Errorf("expected branch hint from active checkout, got %q", bundle.BranchHint)
	}
	if bundle.Query == "" {
		t.Error("expected description resolved from branch context hint, got empty")
	}
}

func TestContextEmptyWithNoDescriptionOrBranchContext(t *testing.T) {
	e, _ := newTestEngine(t)
	bundle, err := e.Context(context.Background(), "unknown-repo", "", "")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(bundle.Sections) != 0 {
		t.Errorf("expected no sections without any description, got %d", len(bundle.Sections))
	}
}

func TestContextUnionsEntityKeywordSearches(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	if _, _, err := s.UpsertCard(ctx, store.CardRow{
		Flow: "order processing", Title: "OrderProcessor", Content: "handles order_total calculation",
		CardType: "flow", ContentHash: "h1",
	}, []float32{1, 0, 0}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	bundle, err := e.Context(ctx, "shop", "Why does OrderProcessor recompute order_total twice?", "")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(bundle.Sections) == 0 {
		t.Fatal("expected at least one section from the merged identifier + HyDE search")
	}
}

func TestExpandHyDEFallsBackWithoutLLM(t *testing.T) {
	e := &Engine{}
	got := e.expandHyDE(context.Background(), "how does retry work")
	if got != "how does retry work" {
		t.Errorf("expected raw description passthrough with no LLM configured, got %q", got)
	}
}

func TestExpandHyDEUsesProviderOutput(t *testing.T) {
	e := &Engine{LLM: &fakeLLM{content: "The retry loop backs off exponentially."}}
	got := e.expandHyDE(context.Background(), "how does retry work")
	if got != "The retry loop backs off exponentially." {
		t.Errorf("expected expanded passage, got %q", got)
	}
}

func TestExpandHyDEFallsBackOnProviderError(t *testing.T) {
	e := &Engine{LLM: &fakeLLM{err: errProviderDown}}
	got := e.expandHyDE(context.Background(), "how does retry work")
	if got != "how does retry work" {
		t.Errorf("expected fallback to raw description on provider error, got %q", got)
	}
}

func TestExtractIdentifiersCapsAndDedupes(t *testing.T) {
	got := extractIdentifiers("OrderProcessor touches order_total and OrderProcessor again, plus ShippingLabel and TaxEngine", 3)
	want := []string{"OrderProcessor", "order_total", "ShippingLabel"}
	if len(got) != len(want) {
		t.Fatalf("expected %d identifiers, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("identifier %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
