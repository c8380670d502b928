package search

import "github.com/codeprism/codeprism/internal/store"

// fuse blends vector and FTS hits into one ranked list: 0.7 semantic +
// 0.3 keyword, with a 1.2x boost for cards present in both result sets.
// Keyword rank is min-max normalized (lower bm25 rank is better, so the
// normalized score inverts it); semantic distance uses max(0, 1-distance).
func fuse(vecResults []store.VectorMatch, ftsResults []store.FTSMatch, debug bool) []Result {
	semScore := make(map[int64]float64, len(vecResults))
	for _, m := range vecResults {
		semScore[m.CardID] = max0(m.Similarity)
	}

	kwRank := normalizeRanks(ftsResults)

	seen := make(map[int64]bool, len(semScore)+len(kwRank))
	for id := range semScore {
		seen[id] = true
	}
	for id := range kwRank {
		seen[id] = true
	}

	results := make([]Result, 0, len(seen))
	for id := range seen {
		sem, inSem := semScore[id]
		kw, inKw := kwRank[id]
		score := semanticWeight*sem + keywordWeight*kw

		var source Source
		switch {
		case inSem && inKw:
			source = SourceBoth
			score *= dualPresenceBoost
		case inSem:
			source = SourceSemantic
		default:
			source = SourceKeyword
		}

		r := Result{CardID: id, Score: score, Source: source}
		if debug {
			r.Debug = map[string]float64{"semantic": sem, "keyword": kw}
		}
		results = append(results, r)
	}
	return results
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// normalizeRanks min-max normalizes bm25 ranks (lower is better) into a
// [0,1] relevance score (higher is better).
func normalizeRanks(matches []store.FTSMatch) map[int64]float64 {
	out := make(map[int64]float64, len(matches))
	if len(matches) == 0 {
		return out
	}
	min, max := matches[0].Rank, matches[0].Rank
	for _, m := range matches {
		if m.Rank < min {
			min = m.Rank
		}
		if m.Rank > max {
			max = m.Rank
		}
	}
	span := max - min
	for _, m := range matches {
		if span == 0 {
			out[m.CardID] = 1
			continue
		}
		out[m.CardID] = 1 - (m.Rank-min)/span
	}
	return out
}
