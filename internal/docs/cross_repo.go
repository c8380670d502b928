package docs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeprism/codeprism/internal/graph"
	"github.com/codeprism/codeprism/internal/flows"
)

// GenerateCrossRepo renders cross_repo.md: the flows that span more than
// one repo, plus the cross-repo API endpoint edges C3 detected between
// them. The orchestrator writes it into each indexed repo's doc bundle on
// every run, from that run's flows and edges.
func GenerateCrossRepo(allFlows []flows.Flow, allEdges []graph.Edge) string {
	var b strings.Builder
	b.WriteString("# Cross-Repo Overview\n\n")

	cross := crossRepoFlows(allFlows)
	b.WriteString("## Cross-Service Flows\n\n")
	if len(cross) == 0 {
		b.WriteString("No flow currently spans more than one repo.\n\n")
	} else {
		b.WriteString("| Flow | Repos | Files | Edges |\n")
		b.WriteString("|------|-------|-------|-------|\n")
		for _, f := range cross {
			fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", f.Name, strings.Join(f.Repos, ", "), len(f.Files), f.EdgeCount)
		}
		b.WriteString("\n")
	}

	endpoints := apiEndpointEdges(allEdges)
	b.WriteString("## Cross-Repo API Calls\n\n")
	if len(endpoints) == 0 {
		b.WriteString("No cross-repo API endpoint edges detected.\n")
		return b.String()
	}
	b.WriteString("| From | To | Method | Path |\n")
	b.WriteString("|------|----|--------|------|\n")
	for _, e := range endpoints {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", e.SourceFile, e.TargetFile, e.Metadata["method"], e.Metadata["path"])
	}
	return b.String()
}

func crossRepoFlows(allFlows []flows.Flow) []flows.Flow {
	var out []flows.Flow
	for _, f := range allFlows {
		if len(f.Repos) > 1 {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func apiEndpointEdges(edges []graph.Edge) []graph.Edge {
	var out []graph.Edge
	for _, e := range edges {
		if e.Relation == graph.RelationAPIEndpoint {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceFile != out[j].SourceFile {
			return out[i].SourceFile < out[j].SourceFile
		}
		return out[i].TargetFile < out[j].TargetFile
	})
	return out
}
