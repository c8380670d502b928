package extractors

import (
	"regexp"
	"strings"

	"github.com/codeprism/codeprism/internal/parser"
)

type expressExtractor struct{}

func (expressExtractor) Applies(path string) bool {
	return strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".ts") ||
		strings.HasSuffix(path, ".jsx") || strings.HasSuffix(path, ".tsx")
}

var routerRouteRe = regexp.MustCompile(`(?:router|app)\.(get|post|put|delete|patch)\(\s*['"]([^'"]+)['"]`)

// apiCallPatterns are the outbound-HTTP-call regexes a cross-service flow
// detector would use to spot service-to-service traffic; here they source
// api_calls[] for the api_endpoint graph edge rule instead.
var apiCallPatterns = []struct {
	re     *regexp.Regexp
	method string
}{
	{regexp.MustCompile(`fetch\(\s*['"]([^'"]+)['"]`), "GET"},
	{regexp.MustCompile(`axios\.(get|post|put|delete|patch)\(\s*['"]([^'"]+)['"]`), "dynamic"},
	{regexp.MustCompile(`axios\(\s*\{\s*method:\s*['"](\w+)['"],\s*url:\s*['"]([^'"]+)['"]`), "dynamic"},
}

func (expressExtractor) Extract(content []byte, path string) parser.PartialParsedFile {
	var out parser.PartialParsedFile
	text := string(content)

	for _, m := range routerRouteRe.FindAllStringSubmatch(text, -1) {
		out.Routes = append(out.Routes, parser.Route{
			Method: strings.ToUpper(m[1]),
			Path:   m[2],
		})
	}

	for _, p := range apiCallPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			method, path := p.method, ""
			if method == "dynamic" {
				method, path = strings.ToUpper(m[1]), m[2]
			} else {
				path = m[1]
			}
			out.APICalls = append(out.APICalls, parser.APICall{Method: method, Path: path})
		}
	}

	return out
}
