// Package orchestrator drives the end-to-end per-repo pipeline: walk,
// parse, classify, build the relationship graph, detect flows, generate
// cards, embed, store, and recompute specificity. It is the assembly
// point that wires every other internal package together.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codeprism/codeprism/internal/cards"
	"github.com/codeprism/codeprism/internal/classifier"
	"github.com/codeprism/codeprism/internal/config"
	"github.com/codeprism/codeprism/internal/docs"
	"github.com/codeprism/codeprism/internal/embeddings"
	"github.com/codeprism/codeprism/internal/flows"
	"github.com/codeprism/codeprism/internal/graph"
	"github.com/codeprism/codeprism/internal/llm"
	"github.com/codeprism/codeprism/internal/parser"
	"github.com/codeprism/codeprism/internal/parser/extractors"
	"github.com/codeprism/codeprism/internal/specificity"
	"github.com/codeprism/codeprism/internal/store"
	"github.com/codeprism/codeprism/internal/walker"
)

// RepoConfig identifies one repository within a (possibly multi-repo)
// workspace: its display name, its root directory on disk, and the
// branch it is currently checked out to.
type RepoConfig struct {
	Name    string
	RootDir string
	Branch  string
}

// ProgressFunc reports per-file progress during a run, mirroring the
// teacher's indexer.ProgressFunc callback shape.
type ProgressFunc func(processed, total int, currentFile string)

// Orchestrator wires the store, embedder, rate-limited LLM provider, and
// the C9 specificity engine into a single per-repo pipeline driver.
type Orchestrator struct {
	Store       *store.Store
	Embedder    embeddings.Embedder
	LLM         llm.Provider
	Specificity *specificity.Engine
	Overrides   []classifier.Override
	Config      *config.Config

	onProgress ProgressFunc
}

// New builds an Orchestrator. llmProvider is wrapped in a DelayGatedProvider
// so every card-generation call site shares one cooperative queue, gapped
// by cfg.LLMDelayMS, regardless of how many files run concurrently.
func New(st *store.Store, embedder embeddings.Embedder, llmProvider llm.Provider, cfg *config.Config) *Orchestrator {
	var gated llm.Provider
	if llmProvider != nil {
		gated = llm.NewDelayGatedProvider(llmProvider, time.Duration(cfg.LLMDelayMS)*time.Millisecond)
	}
	return &Orchestrator{
		Store:       st,
		Embedder:    embedder,
		LLM:         gated,
		Specificity: &specificity.Engine{Store: st},
		Config:      cfg,
	}
}

// SetProgressFunc installs a progress callback for the parse stage.
func (o *Orchestrator) SetProgressFunc(fn ProgressFunc) {
	o.onProgress = fn
}

// Result summarizes one RunRepo call.
type Result struct {
	RunID          string
	FilesProcessed int
	FilesFailed    int
	CardsWritten   int
	CardsUnchanged int
	Errors         []error
	Duration       time.Duration
}

// parsedEntry bundles a parsed file with the raw content its card
// generators need for source snippets.
type parsedEntry struct {
	file    parser.ParsedFile
	role    classifier.Role
	content string
}

// RunRepo executes C1 through C9 for one repository: walk its tree,
// parse and classify every file, build the cross-file graph, detect
// flows, generate every card type, embed and store each card, then
// recompute the specificity centroids.
func (o *Orchestrator) RunRepo(ctx context.Context, repo RepoConfig) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: repo.RootDir,
		Include: o.Config.Include,
		Exclude: o.Config.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", repo.Name, err)
	}

	entries, err := o.parseFiles(ctx, repo, files, result)
	if err != nil {
		return result, err
	}
	result.FilesProcessed = len(entries)

	parsedFiles := make([]parser.ParsedFile, 0, len(entries))
	inputs := make([]graph.Input, 0, len(entries))
	for _, e := range entries {
		parsedFiles = append(parsedFiles, e.file)
		inputs = append(inputs, graph.Input{File: e.file, Role: e.role})
	}

	edges := graph.Build(inputs)
	fileInfo := flows.BuildFileInfo(parsedFiles)
	detected := flows.Detect(fileInfo, edges)

	byPath := make(map[string]parsedEntry, len(entries))
	for _, e := range entries {
		byPath[e.file.Path] = e
	}

	cardList := o.generateCards(ctx, repo, detected, edges, byPath)

	for _, c := range cardList {
		written, err := o.storeCard(ctx, repo, c)
		if err != nil {
			// A failed single-card write is retried once.
			written, err = o.storeCard(ctx, repo, c)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing card %q: %w", c.Title, err))
			continue
		}
		if written {
			result.CardsWritten++
		} else {
			result.CardsUnchanged++
		}
	}

	if len(cardList) > 0 {
		if err := o.Specificity.Recompute(ctx); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("recomputing specificity: %w", err))
		}
	}

	o.writeDocs(ctx, repo, edges, detected, result)

	result.Duration = time.Since(start)
	return result, nil
}

// writeDocs persists the filesystem-visible ai-codeprism/ doc bundle for
// this run. A write failure is a warning, not a run failure — the doc
// bundle is a convenience surface alongside the store, never the source
// of truth.
func (o *Orchestrator) writeDocs(ctx context.Context, repo RepoConfig, edges []graph.Edge, detected []flows.Flow, result *Result) {
	w := docs.NewWriter(repo.RootDir)

	arch := docs.GenerateArchitecture(ctx, repo.Name, edges, detected, o.narrativeProvider(), o.Config.LLMModel)
	if _, err := w.WriteDoc("architecture", arch); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("writing architecture.md: %w", err))
	}

	crossRepo := docs.GenerateCrossRepo(detected, edges)
	if _, err := w.WriteDoc("cross_repo", crossRepo); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("writing cross_repo.md: %w", err))
	}
}

// parseFiles runs C1 (grammar parse) and C2 (role classification) over
// every walked file, bounded by MaxConcurrency via errgroup so a slow
// tree-sitter grammar on one file never blocks the others' progress
// reporting.
func (o *Orchestrator) parseFiles(ctx context.Context, repo RepoConfig, files []walker.FileInfo, result *Result) ([]parsedEntry, error) {
	registry := parser.NewRegistry()
	concurrency := o.Config.MaxConcurrency
	if concurrency < 1 {
		concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	entries := make([]parsedEntry, 0, len(files))
	var processed int
	total := len(files)

	for _, f := range files {
		f := f
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			content, err := os.ReadFile(f.Path)
			if err != nil {
				mu.Lock()
				result.FilesFailed++
				result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", f.RelPath, err))
				mu.Unlock()
				return nil
			}

			partial := extractors.Run(registry.Parse(content, f.RelPath), content, f.RelPath)
			// No framework extractor reports entry points, so
			// extractorSaysEntryPoint is false and the path-based table decides.
			role := classifier.ClassifyEntryPoint(f.RelPath, o.Overrides, false)

			pf := parser.ParsedFile{
				Path:         f.RelPath,
				Repo:         repo.Name,
				Language:     f.Language,
				FileRole:     string(role),
				Imports:      partial.Imports,
				Exports:      partial.Exports,
				Classes:      partial.Classes,
				Functions:    partial.Functions,
				Associations: partial.Associations,
				Routes:       partial.Routes,
				APICalls:     partial.APICalls,
				Validations:  partial.Validations,
				Callbacks:    partial.Callbacks,
				ContentHash:  f.ContentHash,
				IsEntryPoint: role == classifier.RoleEntryPoint,
			}

			mu.Lock()
			entries = append(entries, parsedEntry{file: pf, role: role, content: string(content)})
			processed++
			if o.onProgress != nil {
				o.onProgress(processed, total, f.RelPath)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].file.Path < entries[j].file.Path })
	return entries, nil
}

// toSourceFile projects a parsedEntry into the minimal shape C5's card
// generators need.
func toSourceFile(e parsedEntry) cards.SourceFile {
	return cards.SourceFile{
		Path:     e.file.Path,
		Repo:     e.file.Repo,
		Role:     e.role,
		Language: e.file.Language,
		Content:  e.content,
		Classes:  e.file.Classes,
		Routes:   e.file.Routes,
		APICalls: e.file.APICalls,
	}
}

// llmTextGenerator adapts an llm.Provider to cards.TextGenerator so the
// cards package never has to import internal/llm directly.
type llmTextGenerator struct {
	provider llm.Provider
	model    string
}

func (g llmTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model:    g.model,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// textGenerator returns nil for the QualityLite tier (structural-only
// cards, spec.md §4.5's cost/quality tradeoff), otherwise an
// llmTextGenerator bound to the configured model.
func (o *Orchestrator) textGenerator() cards.TextGenerator {
	if o.narrativeProvider() == nil {
		return nil
	}
	return llmTextGenerator{provider: o.LLM, model: o.Config.LLMModel}
}

// narrativeProvider returns nil for the QualityLite tier or when no LLM
// is configured, otherwise the orchestrator's rate-limited provider.
// Shared by card generation and the architecture.md narrative summary.
func (o *Orchestrator) narrativeProvider() llm.Provider {
	if o.Config.Quality == config.QualityLite || o.LLM == nil {
		return nil
	}
	return o.LLM
}

// storeCard embeds and persists one card, returning whether it was
// actually written (false when UpsertCard found an identical content
// hash already on file).
func (o *Orchestrator) storeCard(ctx context.Context, repo RepoConfig, c cards.Card) (bool, error) {
	var embedding []float32
	if o.Embedder != nil {
		vecs, err := o.Embedder.Embed(ctx, []string{c.Title + "\n" + c.Content}, embeddings.ModeDocument)
		if err != nil {
			return false, fmt.Errorf("embedding card: %w", err)
		}
		if len(vecs) > 0 {
			embedding = vecs[0]
		}
	}

	row := store.CardRow{
		Flow:          c.Flow,
		Title:         c.Title,
		Content:       c.Content,
		CardType:      string(c.CardType),
		Tier:          string(c.Tier),
		SourceFiles:   c.SourceFiles,
		SourceRepos:   c.SourceRepos,
		Tags:          c.Tags,
		Identifiers:   c.Identifiers,
		ValidBranches: branchScope(repo.Branch),
		ContentHash:   c.ContentHash,
	}
	_, written, err := o.Store.UpsertCard(ctx, row, embedding)
	return written, err
}

// branchScope returns nil (branch-agnostic) for an empty branch and for
// main, master, develop, development, staging, stage, production and prod.
// Every other branch, including release, release/*, hotfix/* and epic/*,
// gets a single-branch scope.
func branchScope(branch string) []string {
	if branch == "" {
		return nil
	}
	switch strings.ToLower(branch) {
	case "main", "master", "develop", "development", "staging", "stage", "production", "prod":
		return nil
	}
	return []string{branch}
}
