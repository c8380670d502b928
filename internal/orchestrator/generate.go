package orchestrator

import (
	"context"

	"github.com/codeprism/codeprism/internal/cards"
	"github.com/codeprism/codeprism/internal/classifier"
	"github.com/codeprism/codeprism/internal/flows"
	"github.com/codeprism/codeprism/internal/graph"
	"github.com/codeprism/codeprism/internal/parser"
)

// generateCards runs C5 over one repo's detected flows and graph,
// producing every card type the graph and flow set support: flow/hub
// cards per detected community, model cards for sufficiently-connected
// models, cross-service cards per API endpoint cluster, and
// auto-generated blast-radius cards for heavily-depended-on files.
func (o *Orchestrator) generateCards(ctx context.Context, repo RepoConfig, detected []flows.Flow, edges []graph.Edge, byPath map[string]parsedEntry) []cards.Card {
	gen := o.textGenerator()
	var out []cards.Card

	out = append(out, o.generateFlowAndHubCards(ctx, detected, edges, byPath, gen)...)
	out = append(out, o.generateModelCards(ctx, byPath, gen)...)
	out = append(out, o.generateCrossServiceCards(ctx, edges, byPath, gen)...)
	out = append(out, o.generateAutoGeneratedCards(edges, byPath)...)

	return out
}

func (o *Orchestrator) generateFlowAndHubCards(ctx context.Context, detected []flows.Flow, edges []graph.Edge, byPath map[string]parsedEntry, gen cards.TextGenerator) []cards.Card {
	var out []cards.Card
	for _, flow := range detected {
		files := sourceFilesFor(flow.Files, byPath)
		relationships := relationshipSummaries(flow, byPath)
		heatScores, err := o.Store.HeatScoresForFlow(ctx, flow.Name)
		if err != nil {
			heatScores = nil // tier falls back to structural rather than failing the run
		}

		if flow.IsHub {
			connected := connectedFlows(flow, detected, edges)
			out = append(out, cards.GenerateHubCard(ctx, flow, connected, files, heatScores, gen))
			continue
		}
		out = append(out, cards.GenerateFlowCard(ctx, flow, files, relationships, heatScores, gen))
	}
	return out
}

// connectedFlows returns the other detected flows that contain at least
// one file sharing a graph edge (in either direction) with the hub's file.
func connectedFlows(hub flows.Flow, all []flows.Flow, edges []graph.Edge) []flows.Flow {
	hubFile := ""
	if len(hub.Files) > 0 {
		hubFile = hub.Files[0]
	}
	neighbours := make(map[string]bool)
	for _, e := range edges {
		if e.SourceFile == hubFile {
			neighbours[e.TargetFile] = true
		} else if e.TargetFile == hubFile {
			neighbours[e.SourceFile] = true
		}
	}
	var out []flows.Flow
	for _, f := range all {
		if f.Name == hub.Name {
			continue
		}
		for _, file := range f.Files {
			if neighbours[file] {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func relationshipSummaries(flow flows.Flow, byPath map[string]parsedEntry) []string {
	var out []string
	for _, path := range flow.Files {
		e, ok := byPath[path]
		if !ok {
			continue
		}
		for _, imp := range e.file.Imports {
			out = append(out, path+" imports "+imp)
		}
	}
	return out
}

func sourceFilesFor(paths []string, byPath map[string]parsedEntry) []cards.SourceFile {
	var out []cards.SourceFile
	for _, path := range paths {
		e, ok := byPath[path]
		if !ok || !classifier.IsDomainRelevant(e.role) {
			continue
		}
		out = append(out, toSourceFile(e))
	}
	return out
}

func (o *Orchestrator) generateModelCards(ctx context.Context, byPath map[string]parsedEntry, gen cards.TextGenerator) []cards.Card {
	var out []cards.Card
	for _, e := range byPath {
		var modelAssocs []parser.Association
		isModel := false
		for _, c := range e.file.Classes {
			if c.Type == parser.ClassModel {
				isModel = true
			}
		}
		if !isModel {
			continue
		}
		modelAssocs = e.file.Associations
		if len(modelAssocs) < cards.MinModelAssociations {
			continue
		}
		out = append(out, cards.GenerateModelCard(ctx, toSourceFile(e), modelAssocs, gen))
	}
	return out
}

func (o *Orchestrator) generateCrossServiceCards(ctx context.Context, edges []graph.Edge, byPath map[string]parsedEntry, gen cards.TextGenerator) []cards.Card {
	var out []cards.Card
	clusters := cards.ClusterAPIEndpoints(edges)
	for key, clusterEdges := range clusters {
		fe, ok := byPath[key[0]]
		if !ok {
			continue
		}
		be, ok := byPath[key[1]]
		if !ok {
			continue
		}
		method, path := "", ""
		if len(clusterEdges) > 0 {
			method = clusterEdges[0].Metadata["method"]
			path = clusterEdges[0].Metadata["path"]
		}
		out = append(out, cards.GenerateCrossServiceCard(ctx, toSourceFile(fe), toSourceFile(be), method, path, gen))
	}
	return out
}

func (o *Orchestrator) generateAutoGeneratedCards(edges []graph.Edge, byPath map[string]parsedEntry) []cards.Card {
	reverse := cards.BuildReverseDependencyIndex(edges)
	filesByPath := make(map[string]cards.SourceFile, len(byPath))
	for path, e := range byPath {
		filesByPath[path] = toSourceFile(e)
	}
	return cards.GenerateAutoGeneratedCards(reverse, filesByPath)
}
