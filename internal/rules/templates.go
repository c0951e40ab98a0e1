package rules

import (
	"strings"
	"text/template"
)

// coreTemplate is the always-applied rule with repository-wide conventions.
const coreTemplate = `# {{.ProjectName}}: project conventions

These rules apply to every file in this repository.

## Package manager

This repository uses **{{.Manager}}**.{{if .Marker}} The lockfile is ` + "`{{.Marker}}`" + `.{{end}}
Always use {{.Manager}} commands. Never run another package manager and never
commit a lockfile other than ` + "`{{.Lockfile}}`" + `.

` + "```bash" + `
{{.Commands.Install}}
{{.Commands.RunScript "<script>"}}
{{.Commands.Add}}
{{.Commands.AddDev}}
{{.Commands.Exec}}
` + "```" + `

## Common tasks
{{range .Tasks}}
- {{.Label}}: ` + "`{{.Command}}`" + `
{{- else}}
- Install dependencies: ` + "`{{.Commands.Install}}`" + `
{{- end}}
{{if .Monorepo}}
## Workspace layout

This is a monorepo. Members are declared in ` + "`{{.WorkspaceSource}}`" + `.
Run a script in a single member with:

` + "```bash" + `
{{.FilterExample}}
` + "```" + `

| Member | Path | Role | Rule |
|--------|------|------|------|
{{- range .Members}}
| ` + "`{{.Name}}`" + ` | ` + "`{{.Path}}`" + ` | {{.Role}} | ` + "`{{.Rule}}`" + ` |
{{- end}}

Keep changes scoped to the member you are working in. When a change spans
members, update the shared package first and then its consumers.
{{end}}
## Conventions

- Match the style of the surrounding code before introducing new patterns.
- Add dependencies with ` + "`{{.Commands.Add}}`" + ` instead of editing the manifest by hand.
- Do not edit generated files, build output or ` + "`node_modules`" + `.
{{- range .Conventions}}
- {{.}}
{{- end}}
`

// memberTemplate is the rule scoped to one workspace member.
const memberTemplate = `# {{.Name}}

{{if .Description}}{{.Description}}

{{end}}This rule applies to files under ` + "`{{.Path}}`" + `, a {{.RoleLabel}}{{if .Private}} (private, not published){{end}}.
{{- if .Frameworks}}

Stack: {{join .Frameworks ", "}}.
{{- end}}

## Commands

` + "```bash" + `
{{- range .Scripts}}
{{.}}
{{- else}}
{{.InstallCommand}}
{{- end}}
{{.AddCommand}}
` + "```" + `

## Guidance
{{range .Guidance}}
- {{.}}
{{- end}}
`

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

var (
	coreTmpl   = template.Must(template.New("core").Funcs(templateFuncs).Parse(coreTemplate))
	memberTmpl = template.Must(template.New("member").Funcs(templateFuncs).Parse(memberTemplate))
)
