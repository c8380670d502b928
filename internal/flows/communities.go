package flows

import (
	"github.com/codeprism/codeprism/internal/graph"
)

type wEdge struct {
	to     int
	weight float64
}

// detectCommunities partitions nodes (file paths) into connected
// components via BFS, then further splits components at or above
// minComponentSplit using greedy modularity local search, generalizing
// the teacher's single-component modularitySplit into full multi-component
// partitioning. Hub nodes are excluded from the input node set before this
// runs (spec.md §4.4 stage B).
func detectCommunities(nodes []string, edges []graph.Edge) [][]string {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}
	n := len(nodes)
	if n == 0 {
		return nil
	}

	adj := make([][]wEdge, n)
	totalWeight := 0.0
	for _, e := range edges {
		si, okS := index[e.SourceFile]
		ti, okT := index[e.TargetFile]
		if !okS || !okT {
			continue
		}
		adj[si] = append(adj[si], wEdge{to: ti, weight: e.Weight})
		adj[ti] = append(adj[ti], wEdge{to: si, weight: e.Weight})
		totalWeight += e.Weight
	}

	visited := make([]bool, n)
	var components [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		var comp []int
		queue := []int{i}
		visited[i] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			comp = append(comp, node)
			for _, e := range adj[node] {
				if !visited[e.to] {
					visited[e.to] = true
					queue = append(queue, e.to)
				}
			}
		}
		components = append(components, comp)
	}

	var groups [][]int
	for _, comp := range components {
		if len(comp) >= minComponentSplit && len(comp) <= maxModularityNodes && totalWeight > 0 {
			groups = append(groups, modularitySplit(comp, adj, totalWeight)...)
		} else {
			groups = append(groups, comp)
		}
	}

	result := make([][]string, 0, len(groups))
	for _, g := range groups {
		paths := make([]string, len(g))
		for i, idx := range g {
			paths[i] = nodes[idx]
		}
		result = append(result, paths)
	}
	return result
}

// modularitySplit applies greedy modularity local search (a simplified
// Louvain pass) to split one connected component into sub-communities. If
// the split doesn't improve on the whole component, the component is
// returned unsplit.
func modularitySplit(comp []int, adj [][]wEdge, totalWeight float64) [][]int {
	n := len(comp)
	if n < minComponentSplit {
		return [][]int{comp}
	}

	localIdx := make(map[int]int, n)
	for i, node := range comp {
		localIdx[node] = i
	}

	community := make([]int, n)
	for i := range community {
		community[i] = i
	}

	strength := make([]float64, n)
	for i, node := range comp {
		for _, e := range adj[node] {
			if _, ok := localIdx[e.to]; ok {
				strength[i] += e.weight
			}
		}
	}

	m2 := 2.0 * totalWeight
	if m2 == 0 {
		return [][]int{comp}
	}

	commStrength := make(map[int]float64, n)
	for i := range comp {
		commStrength[community[i]] += strength[i]
	}

	for pass := 0; pass < maxModularityPasses; pass++ {
		moved := false
		for i, node := range comp {
			commWeights := make(map[int]float64)
			for _, e := range adj[node] {
				li, ok := localIdx[e.to]
				if !ok {
					continue
				}
				commWeights[community[li]] += e.weight
			}

			currentComm := community[i]
			kiIn := commWeights[currentComm]
			ki := strength[i]
			sigmaCurrent := commStrength[currentComm]
			removeDelta := kiIn/m2 - (sigmaCurrent*ki)/(m2*m2)

			bestComm := currentComm
			bestGain := 0.0
			for c, wic := range commWeights {
				if c == currentComm {
					continue
				}
				sigmaC := commStrength[c]
				gain := (wic/m2 - (sigmaC*ki)/(m2*m2)) - removeDelta
				// Equal gains go to the smaller community id so the result
				// does not depend on map iteration order.
				if gain > bestGain || (gain == bestGain && gain > 0 && c < bestComm) {
					bestGain = gain
					bestComm = c
				}
			}

			if bestComm != currentComm {
				commStrength[currentComm] -= ki
				commStrength[bestComm] += ki
				community[i] = bestComm
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	groups := make(map[int][]int)
	for i, node := range comp {
		groups[community[i]] = append(groups[community[i]], node)
	}

	result := make([][]int, 0, len(groups))
	for _, g := range groups {
		result = append(result, g)
	}
	if len(result) <= 1 {
		return [][]int{comp}
	}
	return result
}
