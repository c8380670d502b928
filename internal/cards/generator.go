package cards

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/codeprism/codeprism/internal/flows"
	"github.com/codeprism/codeprism/internal/graph"
	"github.com/codeprism/codeprism/internal/parser"
)

// TextGenerator produces a card's prose content from a role-specific
// prompt. Implementations wrap an internal/llm.Provider; the generator
// itself never imports llm directly so it stays unit-testable with fakes.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type snippet struct {
	Path     string
	Language string
	Body     string
}

func buildSnippets(files []SourceFile) []snippet {
	var out []snippet
	for _, f := range files {
		if f.Content == "" {
			continue
		}
		lines := strings.Split(f.Content, "\n")
		if len(lines) > MaxSnippetLines {
			lines = lines[:MaxSnippetLines]
		}
		out = append(out, snippet{Path: f.Path, Language: f.Language, Body: strings.Join(lines, "\n")})
	}
	return out
}

func render(tmplSrc string, data interface{}) (string, error) {
	tmpl, err := template.New("card").Funcs(templateFuncs).Parse(tmplSrc)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// replaceWithLLM asks gen for replacement prose; on error or absence the
// structural content is kept unchanged. The card is always produced.
func replaceWithLLM(ctx context.Context, gen TextGenerator, structural, prompt string) string {
	if gen == nil {
		return structural
	}
	replaced, err := gen.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(replaced) == "" {
		return structural
	}
	return replaced
}

// GenerateFlowCard builds a card for a detected community flow. heatScores
// is the current heat_score of every card already persisted under this
// flow name (empty before the flow's first index run, which tiers as
// structural).
func GenerateFlowCard(ctx context.Context, flow flows.Flow, files []SourceFile, relationships []string, heatScores []float64, gen TextGenerator) Card {
	data := struct {
		Title         string
		Summary       string
		Files         []string
		Relationships []string
		Snippets      []snippet
	}{
		Title:         flow.Name,
		Summary:       fmt.Sprintf("The %s flow spans %d file(s) across %s.", flow.Name, len(flow.Files), strings.Join(flow.Repos, ", ")),
		Files:         displayPaths(files),
		Relationships: relationships,
		Snippets:      buildSnippets(files),
	}

	structural, _ := render(flowCardTemplate, data)
	prompt := fmt.Sprintf("Write a concise developer-facing summary of the %q flow covering files: %s", flow.Name, strings.Join(data.Files, ", "))
	content := replaceWithLLM(ctx, gen, structural, prompt)

	c := Card{
		Flow:     flow.Name,
		Title:    flow.Name,
		Content:  content,
		CardType: CardFlow,
		Tier:     cardTier(heatScores),
		Tags:     computeTags(files, "flow"),
	}
	return finalize(c, files)
}

// GenerateHubCard builds a card summarizing a hub file's connected flows.
// heatScores is the current heat_score of every card already persisted
// under this hub's flow name (empty before its first index run).
func GenerateHubCard(ctx context.Context, hub flows.Flow, connected []flows.Flow, files []SourceFile, heatScores []float64, gen TextGenerator) Card {
	var connectedNames []string
	for _, f := range connected {
		connectedNames = append(connectedNames, f.Name)
	}

	data := struct {
		Title          string
		Summary        string
		ConnectedFlows []string
		Files          []string
	}{
		Title:          hub.Name,
		Summary:        fmt.Sprintf("%s is a hub referenced by %d flow(s).", hub.Name, len(connected)),
		ConnectedFlows: connectedNames,
		Files:          displayPaths(files),
	}

	structural, _ := render(hubCardTemplate, data)
	prompt := fmt.Sprintf("Describe why %q is a central hub and how the flows %v depend on it.", hub.Name, connectedNames)
	content := replaceWithLLM(ctx, gen, structural, prompt)

	c := Card{
		Flow:     hub.Name,
		Title:    hub.Name,
		Content:  content,
		CardType: CardHub,
		Tier:     cardTier(heatScores),
		Tags:     computeTags(files, "hub"),
	}
	return finalize(c, files)
}

// GenerateModelCard builds a card for a model file. Callers must only
// invoke this when len(associations) >= MinModelAssociations; the check
// is not repeated here so batch call sites can filter once upfront.
func GenerateModelCard(ctx context.Context, model SourceFile, associations []parser.Association, gen TextGenerator) Card {
	var assocLines []string
	for _, a := range associations {
		assocLines = append(assocLines, fmt.Sprintf("%s %s -> %s", a.Type, a.Name, a.TargetModel))
	}

	modelName := modelNameFromClasses(model.Classes)
	data := struct {
		Title        string
		Summary      string
		Associations []string
		Snippets     []snippet
	}{
		Title:        modelName,
		Summary:      fmt.Sprintf("%s has %d association(s).", modelName, len(associations)),
		Associations: assocLines,
		Snippets:     buildSnippets([]SourceFile{model}),
	}

	structural, _ := render(modelCardTemplate, data)
	prompt := fmt.Sprintf("Explain the %q model and its relationships: %s", modelName, strings.Join(assocLines, "; "))
	content := replaceWithLLM(ctx, gen, structural, prompt)

	c := Card{
		Flow:     modelName,
		Title:    modelName,
		Content:  content,
		CardType: CardModel,
		Tags:     computeTags([]SourceFile{model}, "model"),
	}
	return finalize(c, []SourceFile{model})
}

// GenerateCrossServiceCard builds a card for one api_endpoint edge cluster,
// grouped by (fe_file, be_file) by the caller before invocation.
func GenerateCrossServiceCard(ctx context.Context, fe, be SourceFile, method, path string, gen TextGenerator) Card {
	data := struct {
		Title   string
		Summary string
		Method  string
		Path    string
		FEFile  string
		BEFile  string
	}{
		Title:   fmt.Sprintf("%s %s", method, path),
		Summary: fmt.Sprintf("Frontend %s calls backend %s via %s %s.", fe.Path, be.Path, method, path),
		Method:  method,
		Path:    path,
		FEFile:  fe.Path,
		BEFile:  be.Path,
	}

	structural, _ := render(crossServiceCardTemplate, data)
	prompt := fmt.Sprintf("Describe the API contract between %s and %s for %s %s.", fe.Path, be.Path, method, path)
	content := replaceWithLLM(ctx, gen, structural, prompt)

	files := []SourceFile{fe, be}
	c := Card{
		Title:    data.Title,
		Content:  content,
		CardType: CardCrossService,
		Tags:     computeTags(files, "cross_service"),
	}
	return finalize(c, files)
}

// ClusterAPIEndpoints groups api_endpoint edges by (source file, target
// file) so exactly one cross-service card is emitted per pairing.
func ClusterAPIEndpoints(edges []graph.Edge) map[[2]string][]graph.Edge {
	clusters := make(map[[2]string][]graph.Edge)
	for _, e := range edges {
		if e.Relation != graph.RelationAPIEndpoint {
			continue
		}
		key := [2]string{e.SourceFile, e.TargetFile}
		clusters[key] = append(clusters[key], e)
	}
	return clusters
}

func displayPaths(files []SourceFile) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func modelNameFromClasses(classes []parser.Class) string {
	for _, c := range classes {
		if c.Type == parser.ClassModel {
			return c.Name
		}
	}
	if len(classes) > 0 {
		return classes[0].Name
	}
	return "model"
}
