package docs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/codeprism/codeprism/internal/diagrams"
	"github.com/codeprism/codeprism/internal/flows"
	"github.com/codeprism/codeprism/internal/graph"
	"github.com/codeprism/codeprism/internal/llm"
)

// GenerateArchitecture renders the architecture.md doc for one repo: a
// mermaid flowchart of its high-signal edges, a flow/hub table, and
// (when an LLM is available) a short narrative summary. Falls back to
// the structural sections alone on a nil provider or a completion error
// — spec.md §7(b)'s LLM-error-never-fails-the-doc rule.
func GenerateArchitecture(ctx context.Context, repo string, edges []graph.Edge, detected []flows.Flow, provider llm.Provider, model string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Architecture: %s\n\n", repo)

	if summary := architectureNarrative(ctx, repo, edges, detected, provider, model); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	b.WriteString("## Flows\n\n")
	b.WriteString("| Flow | Files | Edges | Hub |\n")
	b.WriteString("|------|-------|-------|-----|\n")
	for _, f := range sortedFlows(detected) {
		fmt.Fprintf(&b, "| %s | %d | %d | %v |\n", f.Name, len(f.Files), f.EdgeCount, f.IsHub)
	}
	b.WriteString("\n")

	if diagram := flowchartFor(edges); diagram != "" {
		b.WriteString("## Dependency Graph\n\n```mermaid\n")
		b.WriteString(diagram)
		b.WriteString("```\n")
	}

	return b.String()
}

func sortedFlows(detected []flows.Flow) []flows.Flow {
	out := make([]flows.Flow, len(detected))
	copy(out, detected)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// flowchartFor renders the repo's high-signal edges (the same relations
// C4 stage A restricts hub detection to) as a mermaid flowchart, capped
// so a large repo's doc stays readable.
const maxDiagramEdges = 60

func flowchartFor(edges []graph.Edge) string {
	seen := map[string]bool{}
	var components []diagrams.Component
	var relationships []diagrams.Relationship
	for _, e := range edges {
		if !graph.HighSignalRelations[e.Relation] {
			continue
		}
		if len(relationships) >= maxDiagramEdges {
			break
		}
		for _, name := range []string{e.SourceFile, e.TargetFile} {
			if !seen[name] {
				seen[name] = true
				components = append(components, diagrams.Component{Name: name})
			}
		}
		relationships = append(relationships, diagrams.Relationship{
			From: e.SourceFile, To: e.TargetFile, Label: string(e.Relation),
		})
	}
	if len(relationships) == 0 {
		return ""
	}
	return diagrams.RenderFlowchart(components, relationships)
}

func architectureNarrative(ctx context.Context, repo string, edges []graph.Edge, detected []flows.Flow, provider llm.Provider, model string) string {
	if provider == nil {
		return ""
	}
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Write a 2-3 sentence architecture summary for the %q repo given these detected flows:\n", repo)
	for _, f := range sortedFlows(detected) {
		kind := "flow"
		if f.IsHub {
			kind = "hub"
		}
		fmt.Fprintf(&prompt, "- %s (%s, %d files, %d edges)\n", f.Name, kind, len(f.Files), f.EdgeCount)
	}
	prompt.WriteString("\nNo headers, no bullet points, plain prose.")

	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		Model:       model,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt.String()}},
		MaxTokens:   400,
		Temperature: 0.3,
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(resp.Content)
}
