package search

import "context"

// rerankContentRunes caps how much of a card's content is handed to the
// cross-encoder, per spec.md §4.7 step 6.
const rerankContentRunes = 512

// rerank blends the renormalized hybrid score with a cross-encoder score
// over the top rerankCap candidates. The hybrid score is min-max
// renormalized across candidates first since fusion's dual-presence boost
// can push it above 1, which would otherwise overweight the hybrid side of
// the blend. Any cross-encoder error falls back to the existing
// (renormalized) hybrid score for that candidate rather than failing the
// call.
func (e *Engine) rerank(ctx context.Context, query string, candidates []Result) ([]Result, error) {
	n := len(candidates)
	if n > rerankCap {
		n = rerankCap
	}

	normalized := renormalizeScores(candidates)

	for i := 0; i < n; i++ {
		c, err := e.Store.GetCard(ctx, candidates[i].CardID)
		if err != nil {
			candidates[i].Score = normalized[i]
			continue
		}
		doc := c.Title + "\n" + truncateRunes(c.Content, rerankContentRunes)
		ceScore, err := e.Reranker.Score(query, doc)
		if err != nil {
			candidates[i].Score = normalized[i]
			continue
		}
		candidates[i].Score = rerankHybridWeight*normalized[i] + rerankCEWeight*ceScore
	}
	for i := n; i < len(candidates); i++ {
		candidates[i].Score = normalized[i]
	}
	return candidates, nil
}

// renormalizeScores min-max normalizes candidates' fused scores to [0, 1].
// All candidates report 1 when every score is equal (including the
// single-candidate case), matching the rest of the pipeline's
// all-tied-scores convention (see specificity's minMaxNormalize).
func renormalizeScores(candidates []Result) []float64 {
	out := make([]float64, len(candidates))
	if len(candidates) == 0 {
		return out
	}
	min, max := candidates[0].Score, candidates[0].Score
	for _, c := range candidates[1:] {
		if c.Score < min {
			min = c.Score
		}
		if c.Score > max {
			max = c.Score
		}
	}
	span := max - min
	for i, c := range candidates {
		if span == 0 {
			out[i] = 1
			continue
		}
		out[i] = (c.Score - min) / span
	}
	return out
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
