// Package extractors implements the framework-specific second pass over a
// PartialParsedFile: refining class types and extracting routes,
// associations, and outbound API calls from raw source via regex, the way
// spec.md §4.1 describes for Rails/Django/Express/Vue.
package extractors

import "github.com/codeprism/codeprism/internal/parser"

// Extractor refines an already-parsed file with framework-specific facts.
// It may also run standalone against raw source for route-style files that
// carry no grammar-parseable structure of their own (routes.rb, urls.py).
type Extractor interface {
	// Applies reports whether this extractor should run for the given path.
	Applies(path string) bool
	// Extract returns the additional partial-parse facts found by this
	// extractor's regex pass over content.
	Extract(content []byte, path string) parser.PartialParsedFile
}

// Registry is the ordered list of framework extractors run as a second
// pass after the language parser registry.
var Registry = []Extractor{
	railsExtractor{},
	djangoExtractor{},
	expressExtractor{},
	vueExtractor{},
}

// Run applies every matching extractor and merges their output into base.
func Run(base parser.PartialParsedFile, content []byte, path string) parser.PartialParsedFile {
	for _, e := range Registry {
		if e.Applies(path) {
			base.Merge(e.Extract(content, path))
		}
	}
	return base
}
