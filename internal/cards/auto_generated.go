package cards

import (
	"fmt"

	"github.com/codeprism/codeprism/internal/graph"
)

// minBlastRadiusDependents mirrors the teacher's reverse-dependency
// threshold: an import target needs at least this many dependents before
// it earns its own card.
const minBlastRadiusDependents = 2

// BuildReverseDependencyIndex groups import edges by target file, the
// reverse of graph's forward edge list, for blast-radius card generation.
func BuildReverseDependencyIndex(edges []graph.Edge) map[string][]string {
	reverse := make(map[string][]string)
	for _, e := range edges {
		if e.Relation != graph.RelationImport {
			continue
		}
		reverse[e.TargetFile] = append(reverse[e.TargetFile], e.SourceFile)
	}
	return reverse
}

// GenerateAutoGeneratedCards emits one auto_generated card per import
// target used by minBlastRadiusDependents or more files, adapted from the
// teacher's buildReverseDependencyDocs "what depends on X" documents.
func GenerateAutoGeneratedCards(reverse map[string][]string, filesByPath map[string]SourceFile) []Card {
	var out []Card
	for depPath, dependents := range reverse {
		if len(dependents) < minBlastRadiusDependents {
			continue
		}

		depName := depPath
		if f, ok := filesByPath[depPath]; ok {
			depName = f.Path
		}

		var depFiles []SourceFile
		for _, d := range dependents {
			if f, ok := filesByPath[d]; ok {
				depFiles = append(depFiles, f)
			}
		}

		data := struct {
			Title      string
			Summary    string
			DepName    string
			Dependents []string
		}{
			Title:      fmt.Sprintf("%s (dependents)", depName),
			Summary:    fmt.Sprintf("%s is depended on by %d file(s).", depName, len(dependents)),
			DepName:    depName,
			Dependents: dependents,
		}

		content, err := render(autoGeneratedCardTemplate, data)
		if err != nil {
			content = data.Summary
		}

		c := Card{
			Flow:     depName,
			Title:    data.Title,
			Content:  content,
			CardType: CardAutoGenerated,
			Tags:     computeTags(depFiles, "auto_generated"),
		}
		out = append(out, finalize(c, depFiles))
	}
	return out
}
