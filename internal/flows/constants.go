package flows

// Tunable constants for PageRank hub detection and Louvain-style community
// splitting, pinned here per spec.md §9's open questions (damping,
// iteration count, and hub percentile were left unspecified by the
// distilled spec and must be named explicitly).
const (
	// PageRankDamping is the damping factor used in stage A hub detection.
	PageRankDamping = 0.85
	// PageRankIterations is the fixed number of power-iteration rounds.
	PageRankIterations = 30
	// HubPercentile is the top fraction of ranked nodes eligible to be hubs.
	HubPercentile = 0.10
	// HubMinInDegree is the minimum in-degree a node needs to qualify as a hub.
	HubMinInDegree = 5

	// MinCommunitySize is the minimum file count for a stage-B partition to
	// survive as a flow (spec.md §3's Flow.files invariant).
	MinCommunitySize = 3
	// minComponentSplit mirrors the teacher's threshold below which a
	// connected component is kept whole rather than split further.
	minComponentSplit = 6
	// maxModularityNodes caps the component size eligible for the O(n^2)-ish
	// greedy modularity local search; larger components are kept as-is.
	maxModularityNodes = 200
	// maxModularityPasses bounds the greedy local-search iteration count.
	maxModularityPasses = 20
)
