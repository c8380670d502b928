// Package graph builds the weighted, typed cross-file edge set consumed
// by the flow detector: imports, model associations, route→controller,
// controller→model, and cross-repo API endpoints.
package graph

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/codeprism/codeprism/internal/classifier"
	"github.com/codeprism/codeprism/internal/parser"
)

// Relation identifies the kind of edge between two files.
type Relation string

const (
	RelationImport            Relation = "import"
	RelationModelAssociation  Relation = "model_association"
	RelationRouteController   Relation = "route_controller"
	RelationControllerModel   Relation = "controller_model"
	RelationAPIEndpoint       Relation = "api_endpoint"
)

// HighSignalRelations are the relation kinds PageRank hub detection
// restricts itself to in C4 stage A.
var HighSignalRelations = map[Relation]bool{
	RelationModelAssociation: true,
	RelationControllerModel:  true,
	RelationRouteController:  true,
}

// baseWeight is the per-relation base weight from spec.md §4.3's table.
var baseWeight = map[Relation]float64{
	RelationImport:           1,
	RelationModelAssociation: 3,
	RelationRouteController:  3,
	RelationControllerModel:  2,
	RelationAPIEndpoint:      3,
}

// Edge is a single weighted, typed edge between two files.
type Edge struct {
	SourceFile string
	TargetFile string
	Relation   Relation
	Weight     float64
	Repo       string
	Metadata   map[string]string
}

type fileEntry struct {
	parsed parser.ParsedFile
	role   classifier.Role
}

// Input pairs each file's parsed output with its classified role, the
// Builder's sole input shape.
type Input struct {
	File parser.ParsedFile
	Role classifier.Role
}

// Build computes the deduplicated, deterministically-ordered edge set for
// one index run, implementing the five rules and (a)/(b)/(c) policy of
// spec.md §4.3.
func Build(inputs []Input) []Edge {
	byPath := make(map[string]fileEntry, len(inputs))
	for _, in := range inputs {
		byPath[in.File.Path] = fileEntry{parsed: in.File, role: in.Role}
	}

	dedup := make(map[edgeKey]*Edge)

	for _, in := range inputs {
		a := in.File
		if !classifier.IsEmittingRole(in.Role) {
			continue
		}

		addImportEdges(a, in.Role, byPath, dedup)
		addModelAssociationEdges(a, in.Role, byPath, dedup)
		addRouteControllerEdges(a, in.Role, byPath, dedup)
		addControllerModelEdges(a, in.Role, byPath, dedup)
		addAPIEndpointEdges(a, in.Role, byPath, dedup)
	}

	edges := make([]Edge, 0, len(dedup))
	for _, e := range dedup {
		edges = append(edges, *e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceFile != edges[j].SourceFile {
			return edges[i].SourceFile < edges[j].SourceFile
		}
		if edges[i].TargetFile != edges[j].TargetFile {
			return edges[i].TargetFile < edges[j].TargetFile
		}
		return edges[i].Relation < edges[j].Relation
	})
	return edges
}

type edgeKey struct {
	source, target string
	relation       Relation
}

// addEdge applies policy (a) self-edge / role drop, (b) shared_utility
// weight halving, and (c) cross-repo restriction, then dedups by tuple.
func addEdge(dedup map[edgeKey]*Edge, source fileEntry, sourcePath string, target fileEntry, targetPath string, relation Relation, repo string, meta map[string]string) {
	if sourcePath == targetPath {
		return
	}
	if !classifier.IsEmittingRole(source.role) || !classifier.IsEmittingRole(target.role) {
		return
	}
	if relation != RelationAPIEndpoint && source.parsed.Repo != target.parsed.Repo {
		return
	}

	weight := baseWeight[relation]
	if source.role == classifier.RoleSharedUtility {
		weight *= 0.5
	}

	key := edgeKey{source: sourcePath, target: targetPath, relation: relation}
	if existing, ok := dedup[key]; ok {
		if weight > existing.Weight {
			existing.Weight = weight
		}
		return
	}
	dedup[key] = &Edge{
		SourceFile: sourcePath,
		TargetFile: targetPath,
		Relation:   relation,
		Weight:     weight,
		Repo:       repo,
		Metadata:   meta,
	}
}

func addImportEdges(a parser.ParsedFile, aRole classifier.Role, byPath map[string]fileEntry, dedup map[edgeKey]*Edge) {
	for _, imp := range a.Imports {
		target := resolveRelativeImport(a.Path, imp)
		if target == "" {
			continue
		}
		tgtEntry, ok := byPath[target]
		if !ok {
			// Relative specifiers usually omit the extension; fall back to
			// the importing file's own extension.
			target += path.Ext(a.Path)
			if tgtEntry, ok = byPath[target]; !ok {
				continue
			}
		}
		addEdge(dedup, fileEntry{parsed: a, role: aRole}, a.Path, tgtEntry, target, RelationImport, a.Repo, nil)
	}
}

// resolveRelativeImport resolves a relative import specifier against the
// importing file's directory. Non-relative (bare package/module) specifiers
// resolve to "" since import is cross-repo-blocked and this builder only
// tracks same-repo relative imports it can prove point at a parsed file.
func resolveRelativeImport(fromPath, spec string) string {
	if !strings.HasPrefix(spec, ".") {
		return ""
	}
	dir := path.Dir(fromPath)
	resolved := path.Clean(path.Join(dir, spec))
	return resolved
}

func addModelAssociationEdges(a parser.ParsedFile, aRole classifier.Role, byPath map[string]fileEntry, dedup map[edgeKey]*Edge) {
	hasModelClass := false
	for _, c := range a.Classes {
		if c.Type == parser.ClassModel {
			hasModelClass = true
			break
		}
	}
	if !hasModelClass {
		return
	}
	for _, assoc := range a.Associations {
		if assoc.TargetModel == "" {
			continue
		}
		target := findFileDefiningModel(assoc.TargetModel, a.Repo, byPath)
		if target == "" {
			continue
		}
		addEdge(dedup, fileEntry{parsed: a, role: aRole}, a.Path, byPath[target], target,
			RelationModelAssociation, a.Repo, map[string]string{"association": string(assoc.Type)})
	}
}

func addRouteControllerEdges(a parser.ParsedFile, aRole classifier.Role, byPath map[string]fileEntry, dedup map[edgeKey]*Edge) {
	if len(a.Routes) == 0 {
		return
	}
	for _, route := range a.Routes {
		if route.Controller == "" {
			continue
		}
		target := findFileDefiningClass(route.Controller, a.Repo, byPath)
		if target == "" {
			continue
		}
		addEdge(dedup, fileEntry{parsed: a, role: aRole}, a.Path, byPath[target], target,
			RelationRouteController, a.Repo, map[string]string{"action": route.Action})
	}
}

func addControllerModelEdges(a parser.ParsedFile, aRole classifier.Role, byPath map[string]fileEntry, dedup map[edgeKey]*Edge) {
	isController := false
	for _, c := range a.Classes {
		if c.Type == parser.ClassController {
			isController = true
			break
		}
	}
	if !isController {
		return
	}
	mentioned := make(map[string]bool)
	for _, imp := range a.Imports {
		mentioned[path.Base(imp)] = true
	}
	for _, c := range a.Classes {
		mentioned[c.Name] = true
	}
	for name := range mentioned {
		target := findFileDefiningModel(name, a.Repo, byPath)
		if target == "" || target == a.Path {
			continue
		}
		addEdge(dedup, fileEntry{parsed: a, role: aRole}, a.Path, byPath[target], target,
			RelationControllerModel, a.Repo, map[string]string{"model": name})
	}
}

var idPlaceholderRe = regexp.MustCompile(`:id\b|\{id\}`)

func normalizeRoutePath(p string) string {
	return idPlaceholderRe.ReplaceAllString(p, "{id}")
}

func addAPIEndpointEdges(a parser.ParsedFile, aRole classifier.Role, byPath map[string]fileEntry, dedup map[edgeKey]*Edge) {
	if len(a.APICalls) == 0 {
		return
	}
	for _, call := range a.APICalls {
		normalizedCall := normalizeRoutePath(call.Path)
		for otherPath, entry := range byPath {
			if entry.parsed.Repo == a.Repo {
				continue
			}
			for _, route := range entry.parsed.Routes {
				if route.Method != call.Method {
					continue
				}
				if normalizeRoutePath(route.Path) != normalizedCall {
					continue
				}
				addEdge(dedup, fileEntry{parsed: a, role: aRole}, a.Path, entry, otherPath,
					RelationAPIEndpoint, a.Repo, map[string]string{"method": call.Method, "path": call.Path})
			}
		}
	}
}

func findFileDefiningModel(name, repo string, byPath map[string]fileEntry) string {
	for p, entry := range byPath {
		if entry.parsed.Repo != repo {
			continue
		}
		for _, c := range entry.parsed.Classes {
			if c.Type == parser.ClassModel && strings.EqualFold(c.Name, name) {
				return p
			}
		}
	}
	return ""
}

func findFileDefiningClass(name, repo string, byPath map[string]fileEntry) string {
	for p, entry := range byPath {
		if entry.parsed.Repo != repo {
			continue
		}
		for _, c := range entry.parsed.Classes {
			if c.Name == name {
				return p
			}
		}
	}
	return ""
}
