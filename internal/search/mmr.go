package search

import "context"

// diversify runs maximal-marginal-relevance selection: greedily pick the
// candidate maximizing lambda*relevance - (1-lambda)*max_cosine_to_selected,
// until limit items are chosen or candidates run out.
func (e *Engine) diversify(ctx context.Context, candidates []Result, limit int) ([]Result, error) {
	if len(candidates) <= limit {
		return candidates, nil
	}

	embeddings := make(map[int64][]float32, len(candidates))
	for _, c := range candidates {
		vec, err := e.Store.GetCardEmbedding(ctx, c.CardID)
		if err == nil {
			embeddings[c.CardID] = vec
		}
	}

	remaining := append([]Result(nil), candidates...)
	var selected []Result

	for len(selected) < limit && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0
		for i, cand := range remaining {
			maxSim := 0.0
			for _, s := range selected {
				sim := cosineSim(embeddings[cand.CardID], embeddings[s.CardID])
				if sim > maxSim {
					maxSim = sim
				}
			}
			mmrScore := mmrLambda*cand.Score - (1-mmrLambda)*maxSim
			if bestIdx == -1 || mmrScore > bestScore ||
				(mmrScore == bestScore && cand.CardID < remaining[bestIdx].CardID) {
				bestIdx = i
				bestScore = mmrScore
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected, nil
}
