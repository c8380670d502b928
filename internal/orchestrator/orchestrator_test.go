package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codeprism/codeprism/internal/config"
	"github.com/codeprism/codeprism/internal/embeddings"
	"github.com/codeprism/codeprism/internal/store"
)

type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, mode embeddings.Mode) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dim)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int { return f.dim }
func (f *fakeEmbedder) Name() string    { return "fake" }

func newTestOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "codeprism.db"), 3)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := config.DefaultConfig()
	cfg.Quality = config.QualityLite // no LLM calls, structural cards only
	cfg.MaxConcurrency = 2

	o := New(s, &fakeEmbedder{dim: 3}, nil, cfg)
	return o, dir
}

func writeRepoFixture(t *testing.T, root string) {
	t.Helper()
	model := `class Order < ApplicationRecord
  has_many :line_items
  belongs_to :customer
end
`
	controller := `class OrdersController < ApplicationController
  def index
    @orders = Order.all
  end
end
`
	if err := os.WriteFile(filepath.Join(root, "order.rb"), []byte(model), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "orders_controller.rb"), []byte(controller), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunRepoProcessesFilesAndWritesCards(t *testing.T) {
	o, dir := newTestOrchestrator(t)
	repoRoot := filepath.Join(dir, "repo")
	if err := os.MkdirAll(repoRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	writeRepoFixture(t, repoRoot)

	result, err := o.RunRepo(context.Background(), RepoConfig{Name: "demo", RootDir: repoRoot, Branch: "main"})
	if err != nil {
		t.Fatalf("RunRepo: %v", err)
	}
	if result.FilesProcessed != 2 {
		t.Errorf("expected 2 files processed, got %d", result.FilesProcessed)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestRunRepoEmptyDirectoryProducesNoCards(t *testing.T) {
	o, dir := newTestOrchestrator(t)
	repoRoot := filepath.Join(dir, "empty")
	if err := os.MkdirAll(repoRoot, 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := o.RunRepo(context.Background(), RepoConfig{Name: "empty", RootDir: repoRoot, Branch: "main"})
	if err != nil {
		t.Fatalf("RunRepo: %v", err)
	}
	if result.FilesProcessed != 0 || result.CardsWritten != 0 {
		t.Errorf("expected no files or cards, got %+v", result)
	}
}

func TestDryRunEstimatesWithoutCalls(t *testing.T) {
	o, dir := newTestOrchestrator(t)
	repoRoot := filepath.Join(dir, "repo")
	if err := os.MkdirAll(repoRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	writeRepoFixture(t, repoRoot)

	estimate, err := o.DryRun(context.Background(), RepoConfig{Name: "demo", RootDir: repoRoot})
	if err != nil {
		t.Fatalf("DryRun: %v", err)
	}
	if estimate.TotalFiles != 2 {
		t.Errorf("expected 2 files, got %d", estimate.TotalFiles)
	}
}
