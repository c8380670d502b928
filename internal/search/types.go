// Package search implements C8: the hybrid search pipeline over C7's
// store — semantic cache, parallel FTS/vector retrieval, weighted fusion,
// branch filtering, MMR diversification, and optional cross-encoder rerank.
package search

// Source tags where a result's relevance signal came from.
type Source string

const (
	SourceSemantic Source = "semantic"
	SourceKeyword  Source = "keyword"
	SourceBoth     Source = "both"
)

// Result is one ranked hit returned to the caller.
type Result struct {
	CardID    int64
	Score     float64
	Source    Source
	CacheHit  bool
	Debug     map[string]float64 // populated only when debug=true
}

// CrossEncoder scores a (query, document) pair for the optional rerank
// stage. Implementations wrap a sigmoid-output reranker model.
type CrossEncoder interface {
	Score(query, document string) (float64, error)
}
