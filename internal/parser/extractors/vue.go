package extractors

import (
	"regexp"
	"strings"

	"github.com/codeprism/codeprism/internal/parser"
)

type vueExtractor struct{}

func (vueExtractor) Applies(path string) bool {
	return strings.HasSuffix(path, ".vue")
}

var (
	vueScriptBlockRe  = regexp.MustCompile(`(?s)<script[^>]*>(.*?)</script>`)
	vueComponentTagRe = regexp.MustCompile(`<([A-Z][\w-]*)`)
	vueHandlerRe      = regexp.MustCompile(`@(?:click|submit|change|input)="(\w+)"`)
)

// Extract merges a grammar parse of the <script> block (delegated to the
// JS/TS tree-sitter parser) with template-level component-tag and
// event-handler extraction, per spec.md §4.1's "FE/Vue extractors share a
// merge helper" note.
func (vueExtractor) Extract(content []byte, path string) parser.PartialParsedFile {
	var out parser.PartialParsedFile
	text := string(content)

	if m := vueScriptBlockRe.FindStringSubmatch(text); m != nil {
		scriptParser := scriptBlockParser()
		out.Merge(scriptParser([]byte(m[1]), path))
	}

	seen := make(map[string]bool)
	for _, m := range vueComponentTagRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			out.Classes = append(out.Classes, parser.Class{Name: name, Type: parser.ClassComponent})
		}
	}

	for _, m := range vueHandlerRe.FindAllStringSubmatch(text, -1) {
		out.Functions = append(out.Functions, parser.Function{Name: m[1]})
	}

	return out
}

// scriptBlockParser is overridable so tests can stub the grammar
// dependency; the default delegates to the registry's TS parser since Vue
// single-file components conventionally use <script lang="ts">.
var scriptBlockParser = func() func([]byte, string) parser.PartialParsedFile {
	reg := parser.NewRegistry()
	return func(content []byte, path string) parser.PartialParsedFile {
		return reg.Parse(content, strings.TrimSuffix(path, ".vue")+".ts")
	}
}
