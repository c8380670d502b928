package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammarParser wraps one tree-sitter parser + compiled query pair for a
// single language. Constructed lazily and cached by the Registry; both the
// parser and query are process-wide read-only singletons once built.
type grammarParser struct {
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
	build  func(match *tree_sitter.QueryMatch, captureNames []string, content []byte, captured map[string]string) buildResult
}

// buildResult accumulates the per-match contribution a grammar-specific
// capture handler makes to the partial parse.
type buildResult struct {
	class    *Class
	function *Function
	imp      *string
}

func newTreeSitterLanguage(languagePtr func() uintptr) *tree_sitter.Language {
	return tree_sitter.NewLanguage(languagePtr())
}

// Parse runs the compiled query over content's parse tree and folds every
// match into a PartialParsedFile via the parser's build callback. Parse
// failures and nil queries (the documented go-tree-sitter NewQuery bug)
// degrade to an empty result rather than an error.
func (g *grammarParser) Parse(content []byte, path string) PartialParsedFile {
	var out PartialParsedFile
	if g.parser == nil || g.query == nil {
		return out
	}

	tree := g.parser.Parse(content, nil)
	if tree == nil {
		return out
	}
	defer tree.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	matches := qc.Matches(g.query, tree.RootNode(), content)
	captureNames := g.query.CaptureNames()
	captured := make(map[string]string, 4)

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		for k := range captured {
			delete(captured, k)
		}
		for _, c := range match.Captures {
			name := captureNames[c.Index]
			if strings.Contains(name, ".") {
				captured[name] = string(content[c.Node.StartByte():c.Node.EndByte()])
			}
		}

		res := g.build(match, captureNames, content, captured)
		if res.class != nil {
			out.Classes = append(out.Classes, *res.class)
		}
		if res.function != nil {
			out.Functions = append(out.Functions, *res.function)
		}
		if res.imp != nil {
			out.Imports = append(out.Imports, *res.imp)
		}
	}

	return out
}

// --- Go ---

func newGoParser() LanguageParser {
	p := tree_sitter.NewParser()
	lang := newTreeSitterLanguage(tree_sitter_go.Language)
	if err := p.SetLanguage(lang); err != nil {
		return &grammarParser{}
	}

	queryStr := `
        (function_declaration name: (identifier) @function.name) @function
        (method_declaration
            receiver: (parameter_list) @method.receiver
            name: (field_identifier) @method.name) @method
        (type_declaration
            (type_spec name: (type_identifier) @type.name)) @type
        (import_spec path: (interpreted_string_literal) @import.path) @import
    `
	query, _ := tree_sitter.NewQuery(lang, queryStr)
	if query == nil {
		return &grammarParser{}
	}

	return &grammarParser{
		parser: p,
		query:  query,
		build: func(match *tree_sitter.QueryMatch, names []string, content []byte, captured map[string]string) buildResult {
			var res buildResult
			for _, c := range match.Captures {
				switch names[c.Index] {
				case "function":
					if name, ok := captured["function.name"]; ok {
						res.function = &Function{Name: name, StartLine: int(c.Node.StartPosition().Row) + 1, EndLine: int(c.Node.EndPosition().Row) + 1}
					}
				case "method":
					if name, ok := captured["method.name"]; ok {
						res.function = &Function{Name: name, Receiver: captured["method.receiver"], StartLine: int(c.Node.StartPosition().Row) + 1, EndLine: int(c.Node.EndPosition().Row) + 1}
					}
				case "type":
					if name, ok := captured["type.name"]; ok {
						res.class = &Class{Name: name, Type: ClassOther}
					}
				case "import":
					if path, ok := captured["import.path"]; ok {
						res.imp = strp(strings.Trim(path, `"`))
					}
				}
			}
			return res
		},
	}
}

// --- JavaScript ---

func newJSParser() LanguageParser {
	return newJSLikeParser(newTreeSitterLanguage(tree_sitter_javascript.Language))
}

// --- TypeScript ---

func newTSParser() LanguageParser {
	return newJSLikeParser(newTreeSitterLanguage(tree_sitter_typescript.LanguageTypescript))
}

func newJSLikeParser(lang *tree_sitter.Language) LanguageParser {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		return &grammarParser{}
	}

	queryStr := `
        (function_declaration name: (identifier) @function.name) @function
        (method_definition name: (property_identifier) @method.name) @method
        (class_declaration name: (_) @class.name) @class
        (import_statement source: (string) @import.source) @import
    `
	query, _ := tree_sitter.NewQuery(lang, queryStr)
	if query == nil {
		return &grammarParser{}
	}

	return &grammarParser{
		parser: p,
		query:  query,
		build: func(match *tree_sitter.QueryMatch, names []string, content []byte, captured map[string]string) buildResult {
			var res buildResult
			for _, c := range match.Captures {
				switch names[c.Index] {
				case "function":
					if name, ok := captured["function.name"]; ok {
						res.function = &Function{Name: name, StartLine: int(c.Node.StartPosition().Row) + 1, EndLine: int(c.Node.EndPosition().Row) + 1}
					}
				case "method":
					if name, ok := captured["method.name"]; ok {
						res.function = &Function{Name: name, StartLine: int(c.Node.StartPosition().Row) + 1, EndLine: int(c.Node.EndPosition().Row) + 1}
					}
				case "class":
					if name, ok := captured["class.name"]; ok {
						res.class = &Class{Name: name, Type: ClassComponent}
					}
				case "import":
					if src, ok := captured["import.source"]; ok {
						res.imp = strp(strings.Trim(src, `"'`))
					}
				}
			}
			return res
		},
	}
}

// --- Python ---

func newPythonParser() LanguageParser {
	p := tree_sitter.NewParser()
	lang := newTreeSitterLanguage(tree_sitter_python.Language)
	if err := p.SetLanguage(lang); err != nil {
		return &grammarParser{}
	}

	queryStr := `
        (function_definition name: (identifier) @function.name) @function
        (class_definition name: (identifier) @class.name) @class
        (import_statement) @import
        (import_from_statement) @import
    `
	query, _ := tree_sitter.NewQuery(lang, queryStr)
	if query == nil {
		return &grammarParser{}
	}

	return &grammarParser{
		parser: p,
		query:  query,
		build: func(match *tree_sitter.QueryMatch, names []string, content []byte, captured map[string]string) buildResult {
			var res buildResult
			for _, c := range match.Captures {
				switch names[c.Index] {
				case "function":
					if name, ok := captured["function.name"]; ok {
						res.function = &Function{Name: name, StartLine: int(c.Node.StartPosition().Row) + 1, EndLine: int(c.Node.EndPosition().Row) + 1}
					}
				case "class":
					if name, ok := captured["class.name"]; ok {
						res.class = &Class{Name: name, Type: ClassModel}
					}
				case "import":
					text := string(content[c.Node.StartByte():c.Node.EndByte()])
					res.imp = strp(text)
				}
			}
			return res
		},
	}
}

func strp(s string) *string { return &s }
