package extractors

import (
	"regexp"
	"strings"

	"github.com/codeprism/codeprism/internal/parser"
)

type railsExtractor struct{}

func (railsExtractor) Applies(path string) bool {
	return strings.HasSuffix(path, ".rb")
}

var (
	railsRouteLineRe = regexp.MustCompile(`^\s*(get|post|put|patch|delete)\s+['"]([^'"]+)['"]\s*,\s*to:\s*['"]([\w#]+)['"]`)
	railsResourcesRe = regexp.MustCompile(`^\s*resources?\s+:(\w+)`)
)

// Extract reads route declarations from a dedicated config/routes.rb file
// (no grammar parse needed). Any other .rb file yields an empty result;
// the line-oriented ruby parser already extracts has_many/belongs_to.
func (railsExtractor) Extract(content []byte, path string) parser.PartialParsedFile {
	var out parser.PartialParsedFile
	if !isRailsRoutesFile(path) {
		return out
	}

	for _, line := range strings.Split(string(content), "\n") {
		if m := railsRouteLineRe.FindStringSubmatch(line); m != nil {
			controller, action := splitControllerAction(m[3])
			out.Routes = append(out.Routes, parser.Route{
				Method:     strings.ToUpper(m[1]),
				Path:       m[2],
				Controller: controller,
				Action:     action,
			})
			continue
		}
		if m := railsResourcesRe.FindStringSubmatch(line); m != nil {
			res := m[1]
			controller := singularPascal(res) + "sController"
			for _, action := range []string{"index", "show", "create", "update", "destroy"} {
				out.Routes = append(out.Routes, parser.Route{
					Method:     restMethodFor(action),
					Path:       "/" + res,
					Controller: controller,
					Action:     action,
				})
			}
		}
	}
	return out
}

func isRailsRoutesFile(path string) bool {
	return strings.HasSuffix(path, "config/routes.rb") || strings.HasSuffix(path, "/routes.rb")
}

func splitControllerAction(s string) (string, string) {
	parts := strings.SplitN(s, "#", 2)
	if len(parts) != 2 {
		return s, ""
	}
	return singularPascal(parts[0]) + "sController", parts[1]
}

func restMethodFor(action string) string {
	switch action {
	case "index", "show":
		return "GET"
	case "create":
		return "POST"
	case "update":
		return "PATCH"
	case "destroy":
		return "DELETE"
	default:
		return "GET"
	}
}

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
