package flows

import (
	"sort"

	"github.com/codeprism/codeprism/internal/graph"
)

// pageRank computes PageRank scores over the directed graph restricted to
// HIGH_SIGNAL relations (spec.md §4.4 stage A), using a fixed damping
// factor and iteration count (see constants.go).
func pageRank(nodes []string, edges []graph.Edge) map[string]float64 {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}
	n := len(nodes)
	if n == 0 {
		return nil
	}

	outWeight := make([]float64, n)
	type out struct {
		to int
		w  float64
	}
	outs := make([][]out, n)

	for _, e := range edges {
		if !HighSignalRelations[e.Relation] {
			continue
		}
		si, okS := index[e.SourceFile]
		ti, okT := index[e.TargetFile]
		if !okS || !okT {
			continue
		}
		outs[si] = append(outs[si], out{to: ti, w: e.Weight})
		outWeight[si] += e.Weight
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	d := PageRankDamping
	base := (1 - d) / float64(n)

	for iter := 0; iter < PageRankIterations; iter++ {
		next := make([]float64, n)
		for i := range next {
			next[i] = base
		}
		danglingMass := 0.0
		for i := 0; i < n; i++ {
			if outWeight[i] == 0 {
				danglingMass += rank[i]
				continue
			}
			for _, o := range outs[i] {
				next[o.to] += d * rank[i] * (o.w / outWeight[i])
			}
		}
		if danglingMass > 0 {
			share := d * danglingMass / float64(n)
			for i := range next {
				next[i] += share
			}
		}
		rank = next
	}

	result := make(map[string]float64, n)
	for i, node := range nodes {
		result[node] = rank[i]
	}
	return result
}

// inDegree computes each node's in-degree restricted to HIGH_SIGNAL
// relations, matching the population PageRank was computed over.
func inDegree(nodes []string, edges []graph.Edge) map[string]int {
	deg := make(map[string]int, len(nodes))
	for _, n := range nodes {
		deg[n] = 0
	}
	for _, e := range edges {
		if !HighSignalRelations[e.Relation] {
			continue
		}
		if _, ok := deg[e.TargetFile]; ok {
			deg[e.TargetFile]++
		}
	}
	return deg
}

// detectHubs picks the hub set: rank in the top HubPercentile AND
// in-degree >= HubMinInDegree.
func detectHubs(nodes []string, edges []graph.Edge) map[string]bool {
	if len(nodes) == 0 {
		return nil
	}
	rank := pageRank(nodes, edges)
	deg := inDegree(nodes, edges)

	sorted := append([]string(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool {
		if rank[sorted[i]] != rank[sorted[j]] {
			return rank[sorted[i]] > rank[sorted[j]]
		}
		return sorted[i] < sorted[j]
	})

	cutoff := int(float64(len(sorted)) * HubPercentile)
	if cutoff < 1 {
		cutoff = 1
	}

	hubs := make(map[string]bool)
	for i := 0; i < cutoff && i < len(sorted); i++ {
		node := sorted[i]
		if deg[node] >= HubMinInDegree {
			hubs[node] = true
		}
	}
	return hubs
}
