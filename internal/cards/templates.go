package cards

import (
	"strings"
	"text/template"
)

// templateFuncs is the helper set used across every card template; it
// defines only oneline, which folds a string onto a single line.
var templateFuncs = template.FuncMap{
	"oneline": func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "\r", "")
	},
}

const flowCardTemplate = `# {{ .Title }}

{{ .Summary }}

## Source Files

{{ range .Files }}- {{ . }}
{{ end }}
{{ if .Relationships }}## Relationships

{{ range .Relationships }}- {{ . }}
{{ end }}{{ end }}
{{ if .Snippets }}## Key Source

{{ range .Snippets }}### {{ .Path }}

` + "```" + `{{ .Language }}
{{ .Body }}
` + "```" + `

{{ end }}{{ end }}`

const hubCardTemplate = `# {{ .Title }} (hub)

{{ .Summary }}

## Connected Flows

{{ range .ConnectedFlows }}- {{ . }}
{{ end }}
## Source Files

{{ range .Files }}- {{ . }}
{{ end }}`

const modelCardTemplate = `# {{ .Title }}

{{ .Summary }}

## Associations

{{ range .Associations }}- {{ . }}
{{ end }}
{{ if .Snippets }}## Source

{{ range .Snippets }}` + "```" + `{{ .Language }}
{{ .Body }}
` + "```" + `
{{ end }}{{ end }}`

const crossServiceCardTemplate = `# {{ .Title }}

{{ .Summary }}

## API Contract

- **{{ .Method }} {{ .Path }}**
- Frontend: {{ .FEFile }}
- Backend: {{ .BEFile }}
`

const autoGeneratedCardTemplate = `# {{ .Title }}

{{ .Summary }}

## Dependents (blast radius)

{{ range .Dependents }}- {{ . }} depends on {{ $.DepName }}
{{ end }}
Changes to {{ .DepName }} could affect all {{ len .Dependents }} file(s) listed above.
`

const insightCardTemplate = `# {{ .Title }}

{{ .Content }}
{{ if .Files }}
## Related Files

{{ range .Files }}- {{ . }}
{{ end }}{{ end }}`
