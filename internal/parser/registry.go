package parser

import (
	"path/filepath"
	"strings"
	"sync"
)

// LanguageParser parses one file's content into a PartialParsedFile. It
// must never return an error for malformed input — unknown constructs are
// silently dropped and a best-effort (possibly empty) result is returned.
type LanguageParser interface {
	Parse(content []byte, path string) PartialParsedFile
}

// Registry maps a file extension to a lazily-constructed LanguageParser.
// Parsers and their compiled grammar queries are process-wide read-only
// singletons, built on first use and cached for the registry's lifetime.
type Registry struct {
	mu      sync.Mutex
	byExt   map[string]LanguageParser
	factory map[string]func() LanguageParser
}

// NewRegistry builds a Registry wired with the grammar and regex parsers
// this module ships: Go, JavaScript, TypeScript, Python via tree-sitter,
// and Ruby via a line-oriented regex parser (no tree-sitter-ruby grammar
// is available).
func NewRegistry() *Registry {
	r := &Registry{
		byExt:   make(map[string]LanguageParser),
		factory: make(map[string]func() LanguageParser),
	}
	r.factory[".go"] = func() LanguageParser { return newGoParser() }
	r.factory[".js"] = func() LanguageParser { return newJSParser() }
	r.factory[".jsx"] = func() LanguageParser { return newJSParser() }
	r.factory[".mjs"] = func() LanguageParser { return newJSParser() }
	r.factory[".cjs"] = func() LanguageParser { return newJSParser() }
	r.factory[".ts"] = func() LanguageParser { return newTSParser() }
	r.factory[".tsx"] = func() LanguageParser { return newTSParser() }
	r.factory[".py"] = func() LanguageParser { return newPythonParser() }
	r.factory[".rb"] = func() LanguageParser { return newRubyParser() }
	return r
}

// ParserFor returns the LanguageParser for the given file path's extension,
// constructing and caching it on first use. Returns nil, false for unknown
// extensions — callers should treat that as "empty partial".
func (r *Registry) ParserFor(path string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.byExt[ext]; ok {
		return p, true
	}
	factory, ok := r.factory[ext]
	if !ok {
		return nil, false
	}
	p := factory()
	r.byExt[ext] = p
	return p, true
}

// Parse runs the registered parser for path's extension (if any), producing
// a best-effort PartialParsedFile. Unknown extensions yield an empty
// partial rather than an error, per spec.md §4.1's "never crash" contract.
func (r *Registry) Parse(content []byte, path string) PartialParsedFile {
	p, ok := r.ParserFor(path)
	if !ok {
		return PartialParsedFile{}
	}
	return p.Parse(content, path)
}
