package extractors

import (
	"regexp"
	"strings"

	"github.com/codeprism/codeprism/internal/parser"
)

type djangoExtractor struct{}

func (djangoExtractor) Applies(path string) bool {
	return strings.HasSuffix(path, "models.py") || strings.HasSuffix(path, "urls.py")
}

var (
	djangoForeignKeyRe  = regexp.MustCompile(`^\s*(\w+)\s*=\s*models\.ForeignKey\(\s*['"]?(\w+)['"]?`)
	djangoM2MRe         = regexp.MustCompile(`^\s*(\w+)\s*=\s*models\.ManyToManyField\(\s*['"]?(\w+)['"]?`)
	djangoOneToOneRe    = regexp.MustCompile(`^\s*(\w+)\s*=\s*models\.OneToOneField\(\s*['"]?(\w+)['"]?`)
	djangoURLPatternRe  = regexp.MustCompile(`path\(\s*['"]([^'"]*)['"]\s*,\s*([\w.]+)`)
)

func (djangoExtractor) Extract(content []byte, path string) parser.PartialParsedFile {
	var out parser.PartialParsedFile

	if strings.HasSuffix(path, "models.py") {
		for _, line := range strings.Split(string(content), "\n") {
			if m := djangoForeignKeyRe.FindStringSubmatch(line); m != nil {
				out.Associations = append(out.Associations, parser.Association{
					Type: parser.AssocForeignKey, Name: m[1], TargetModel: m[2],
				})
				continue
			}
			if m := djangoM2MRe.FindStringSubmatch(line); m != nil {
				out.Associations = append(out.Associations, parser.Association{
					Type: parser.AssocManyToManyField, Name: m[1], TargetModel: m[2],
				})
				continue
			}
			if m := djangoOneToOneRe.FindStringSubmatch(line); m != nil {
				out.Associations = append(out.Associations, parser.Association{
					Type: parser.AssocOneToOneField, Name: m[1], TargetModel: m[2],
				})
			}
		}
	}

	if strings.HasSuffix(path, "urls.py") {
		for _, m := range djangoURLPatternRe.FindAllStringSubmatch(string(content), -1) {
			out.Routes = append(out.Routes, parser.Route{
				Method: "GET",
				Path:   "/" + strings.TrimPrefix(m[1], "/"),
				Action: m[2],
			})
		}
	}

	return out
}
