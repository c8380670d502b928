package orchestrator

import (
	"context"
	"fmt"

	"github.com/codeprism/codeprism/internal/config"
	"github.com/codeprism/codeprism/internal/llm"
	"github.com/codeprism/codeprism/internal/walker"
)

// CostEstimate reports a dry run's projected token usage and spend
// without making any LLM or embedding calls.
type CostEstimate struct {
	TotalFiles          int
	TotalTokensEstimate int
	EstimatedCost       float64
	CostBreakdown       map[string]float64
}

// outputTokensPerFile mirrors the teacher's per-quality-tier output
// budget: lite produces structural-only cards (far less LLM output),
// max affords a fuller rewrite per card.
func outputTokensPerFile(tier config.QualityTier) int {
	switch tier {
	case config.QualityMax:
		return 3000
	case config.QualityNormal:
		return 1500
	default:
		return 500
	}
}

// DryRun estimates the cost of indexing repo without calling any LLM or
// embedding API, walking the tree to get real file sizes and applying
// the configured model's price table entry.
func (o *Orchestrator) DryRun(ctx context.Context, repo RepoConfig) (*CostEstimate, error) {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: repo.RootDir,
		Include: o.Config.Include,
		Exclude: o.Config.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", repo.Name, err)
	}

	estimate := &CostEstimate{
		TotalFiles:    len(files),
		CostBreakdown: make(map[string]float64),
	}

	var totalInputTokens int
	for _, f := range files {
		totalInputTokens += int(f.Size) / 4
	}
	totalOutputTokens := len(files) * outputTokensPerFile(o.Config.Quality)
	estimate.TotalTokensEstimate = totalInputTokens + totalOutputTokens

	model := o.Config.LLMModel
	cardCost := llm.EstimateCost(model, totalInputTokens, totalOutputTokens)
	estimate.CostBreakdown["cards"] = cardCost

	// Embeddings run over card content, roughly half of source size, at a
	// flat rate since embedding models aren't in the completion price table.
	embeddingTokens := totalInputTokens / 2
	const embeddingCostPerMillion = 0.10
	embeddingCost := float64(embeddingTokens) / 1_000_000 * embeddingCostPerMillion
	estimate.CostBreakdown["embeddings"] = embeddingCost

	estimate.EstimatedCost = cardCost + embeddingCost
	return estimate, nil
}
