package parser

import (
	"regexp"
	"strings"
)

// rubyParser is a line-oriented regex extractor for Ruby source, in the
// style of the flow detector's regex pattern tables: no tree-sitter-ruby
// grammar exists in the ecosystem surface this module draws on, so Ruby
// is parsed structurally via line matching instead of an AST walk.
type rubyParser struct{}

func newRubyParser() LanguageParser { return rubyParser{} }

var (
	rubyClassRe       = regexp.MustCompile(`^\s*class\s+([A-Z]\w*)(?:\s*<\s*([\w:]+))?`)
	rubyDefRe         = regexp.MustCompile(`^\s*def\s+(self\.)?([a-zA-Z_]\w*[?!=]?)`)
	rubyRequireRe     = regexp.MustCompile(`^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`)
	rubyHasManyRe     = regexp.MustCompile(`^\s*has_many\s+:(\w+)(?:.*class_name:\s*['"](\w+)['"])?`)
	rubyBelongsToRe   = regexp.MustCompile(`^\s*belongs_to\s+:(\w+)(?:.*class_name:\s*['"](\w+)['"])?`)
	rubyHasOneRe      = regexp.MustCompile(`^\s*has_one\s+:(\w+)(?:.*class_name:\s*['"](\w+)['"])?`)
	rubyHABTMRe       = regexp.MustCompile(`^\s*has_and_belongs_to_many\s+:(\w+)`)
	rubyValidatesRe   = regexp.MustCompile(`^\s*validates?\s+:(\w+)`)
	rubyCallbackRe    = regexp.MustCompile(`^\s*(before_save|after_save|before_create|after_create|before_update|after_update|before_destroy|after_destroy|before_validation|after_validation)\b`)
)

func (rubyParser) Parse(content []byte, path string) PartialParsedFile {
	var out PartialParsedFile
	var currentClass *Class

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if m := rubyClassRe.FindStringSubmatch(line); m != nil {
			cls := Class{Name: m[1], Type: classifyRubyClass(path, m[1], m[2]), Parent: m[2]}
			out.Classes = append(out.Classes, cls)
			currentClass = &out.Classes[len(out.Classes)-1]
			continue
		}
		if m := rubyDefRe.FindStringSubmatch(line); m != nil {
			fn := Function{Name: m[2], StartLine: i + 1, EndLine: i + 1}
			if currentClass != nil {
				fn.Receiver = currentClass.Name
			}
			out.Functions = append(out.Functions, fn)
			continue
		}
		if m := rubyRequireRe.FindStringSubmatch(line); m != nil {
			out.Imports = append(out.Imports, m[1])
			continue
		}
		if m := rubyHasManyRe.FindStringSubmatch(line); m != nil {
			out.Associations = append(out.Associations, assoc(AssocHasMany, m[1], m[2]))
			continue
		}
		if m := rubyBelongsToRe.FindStringSubmatch(line); m != nil {
			out.Associations = append(out.Associations, assoc(AssocBelongsTo, m[1], m[2]))
			continue
		}
		if m := rubyHasOneRe.FindStringSubmatch(line); m != nil {
			out.Associations = append(out.Associations, assoc(AssocHasOne, m[1], m[2]))
			continue
		}
		if m := rubyHABTMRe.FindStringSubmatch(line); m != nil {
			out.Associations = append(out.Associations, assoc(AssocHABTM, m[1], ""))
			continue
		}
		if m := rubyValidatesRe.FindStringSubmatch(line); m != nil {
			out.Validations = append(out.Validations, m[1])
			continue
		}
		if m := rubyCallbackRe.FindStringSubmatch(line); m != nil {
			out.Callbacks = append(out.Callbacks, m[1])
			continue
		}
	}

	return out
}

func assoc(t AssociationType, name, target string) Association {
	if target == "" {
		target = singularPascal(name)
	}
	return Association{Type: t, Name: name, TargetModel: target}
}

// singularPascal makes a best-effort singular PascalCase guess from a
// snake_case, possibly-plural association name (e.g. "patients" -> "Patient").
func singularPascal(name string) string {
	name = strings.TrimSuffix(name, "s")
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

func classifyRubyClass(path, name, parent string) ClassType {
	switch {
	case strings.Contains(path, "/models/"):
		return ClassModel
	case strings.Contains(path, "/controllers/"), strings.HasSuffix(name, "Controller"):
		return ClassController
	case strings.Contains(path, "/jobs/"), strings.HasSuffix(name, "Job"):
		return ClassJob
	case strings.Contains(path, "/serializers/"), strings.HasSuffix(name, "Serializer"):
		return ClassSerializer
	case strings.Contains(path, "/concerns/"):
		return ClassConcern
	case strings.Contains(path, "/helpers/"), strings.HasSuffix(name, "Helper"):
		return ClassHelper
	case strings.Contains(path, "/middleware"):
		return ClassMiddleware
	default:
		return ClassOther
	}
}
