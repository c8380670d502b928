package flows

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/codeprism/codeprism/internal/graph"
	"github.com/codeprism/codeprism/internal/parser"
)

// FileInfo is the minimal per-file shape the detector needs for naming:
// its repo and any model-class names it defines.
type FileInfo struct {
	Repo       string
	ModelNames []string // PascalCase model class names defined in this file
}

// Detect runs the two-stage C4 pipeline: PageRank hub detection followed by
// modularity-based community detection over the remaining nodes, then
// names and dedups the resulting flows.
func Detect(files map[string]FileInfo, edges []graph.Edge) []Flow {
	nodes := make([]string, 0, len(files))
	for f := range files {
		nodes = append(nodes, f)
	}
	sort.Strings(nodes)
	if len(nodes) == 0 {
		return nil
	}

	hubs := detectHubs(nodes, edges)

	var remaining []string
	for _, n := range nodes {
		if !hubs[n] {
			remaining = append(remaining, n)
		}
	}

	var flows []Flow
	for hub := range hubs {
		flows = append(flows, Flow{
			Name:      nameFlow([]string{hub}, files, edges),
			Files:     []string{hub},
			Repos:     reposFor([]string{hub}, files),
			EdgeCount: countInternalEdges([]string{hub}, edges),
			IsHub:     true,
		})
	}

	remainingEdges := filterEdgesWithin(edges, remaining)
	groups := detectCommunities(remaining, remainingEdges)

	for _, g := range groups {
		if len(g) < MinCommunitySize {
			continue
		}
		sort.Strings(g)
		flows = append(flows, Flow{
			Name:      nameFlow(g, files, edges),
			Files:     g,
			Repos:     reposFor(g, files),
			EdgeCount: countInternalEdges(g, edges),
			IsHub:     false,
		})
	}

	sort.Slice(flows, func(i, j int) bool {
		if flows[i].EdgeCount != flows[j].EdgeCount {
			return flows[i].EdgeCount > flows[j].EdgeCount
		}
		if len(flows[i].Files) != len(flows[j].Files) {
			return len(flows[i].Files) > len(flows[j].Files)
		}
		return smallestPath(flows[i].Files) < smallestPath(flows[j].Files)
	})

	dedupNames(flows)
	return flows
}

func filterEdgesWithin(edges []graph.Edge, nodes []string) []graph.Edge {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	var out []graph.Edge
	for _, e := range edges {
		if set[e.SourceFile] && set[e.TargetFile] {
			out = append(out, e)
		}
	}
	return out
}

func countInternalEdges(files []string, edges []graph.Edge) int {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f] = true
	}
	count := 0
	for _, e := range edges {
		if set[e.SourceFile] && set[e.TargetFile] {
			count++
		}
	}
	return count
}

func reposFor(files []string, infos map[string]FileInfo) []string {
	seen := make(map[string]bool)
	var repos []string
	for _, f := range files {
		r := infos[f].Repo
		if r != "" && !seen[r] {
			seen[r] = true
			repos = append(repos, r)
		}
	}
	sort.Strings(repos)
	return repos
}

func smallestPath(files []string) string {
	min := files[0]
	for _, f := range files[1:] {
		if f < min {
			min = f
		}
	}
	return min
}

var pathSegmentOrder = []string{"/models/", "/controllers/", "/components/", "/api/"}

var kebabBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

func toKebab(s string) string {
	s = kebabBoundary.ReplaceAllString(s, "${1}-${2}")
	s = strings.ReplaceAll(s, "_", "-")
	return strings.ToLower(s)
}

// nameFlow applies spec.md §4.4's naming precedence: dominant model class
// name, then first recognized path segment, then most-common basename stem.
func nameFlow(files []string, infos map[string]FileInfo, edges []graph.Edge) string {
	fileWeight := make(map[string]float64, len(files))
	for _, e := range edges {
		fileWeight[e.SourceFile] += e.Weight
		fileWeight[e.TargetFile] += e.Weight
	}

	modelWeight := make(map[string]float64)
	for _, f := range files {
		for _, m := range infos[f].ModelNames {
			modelWeight[m] += fileWeight[f]
		}
	}
	if name := mostWeighted(modelWeight); name != "" {
		return toKebab(singularize(name))
	}

	for _, seg := range pathSegmentOrder {
		for _, f := range files {
			if strings.Contains(f, seg) {
				return strings.Trim(seg, "/")
			}
		}
	}

	stemCounts := make(map[string]int)
	for _, f := range files {
		stemCounts[basenameStem(f)]++
	}
	if name := mostCommon(stemCounts); name != "" {
		return toKebab(name)
	}
	return "flow"
}

func mostCommon(counts map[string]int) string {
	best := ""
	bestCount := 0
	var keys []string
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			bestCount = counts[k]
			best = k
		}
	}
	return best
}

func mostWeighted(weights map[string]float64) string {
	best := ""
	bestWeight := 0.0
	var keys []string
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if weights[k] > bestWeight {
			bestWeight = weights[k]
			best = k
		}
	}
	return best
}

func basenameStem(path string) string {
	base := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		base = path[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}

// singularize strips a trailing "s" for simple plural model names
// (e.g. patient_controller's mentioned "Patients" -> "Patient").
func singularize(name string) string {
	if strings.HasSuffix(name, "ies") {
		return strings.TrimSuffix(name, "ies") + "y"
	}
	if strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") {
		return strings.TrimSuffix(name, "s")
	}
	return name
}

func dedupNames(flows []Flow) {
	seen := make(map[string]int)
	for i := range flows {
		name := flows[i].Name
		seen[name]++
		if seen[name] > 1 {
			flows[i].Name = name + "_" + strconv.Itoa(seen[name])
		}
	}
}

// BuildFileInfo extracts the naming-relevant subset of a ParsedFile.
func BuildFileInfo(files []parser.ParsedFile) map[string]FileInfo {
	out := make(map[string]FileInfo, len(files))
	for _, f := range files {
		var models []string
		for _, c := range f.Classes {
			if c.Type == parser.ClassModel {
				models = append(models, c.Name)
			}
		}
		out[f.Path] = FileInfo{Repo: f.Repo, ModelNames: models}
	}
	return out
}
