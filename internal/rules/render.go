package rules

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ohare93/rulegen/internal/pkgmanager"
	"github.com/ohare93/rulegen/internal/workspace"
)

// CoreFile is the name of the always-applied rule.
const CoreFile = "core" + Extension

// Options tunes rendering. The zero value is usable.
type Options struct {
	ProjectName string   // Overrides the root package name in headings
	Conventions []string // Extra bullet lines appended to the core rule
}

// Input is everything Render needs.
type Input struct {
	Detection pkgmanager.Result
	Workspace *workspace.Workspace
	Options   Options
}

// Render produces the core rule followed by one rule per workspace member,
// in member order. It does no I/O and the same input always yields the same
// output.
func Render(in Input) ([]RuleFile, error) {
	if in.Workspace == nil {
		return nil, fmt.Errorf("render: workspace is required")
	}

	commands := in.Detection.Commands()
	names := assignFileNames(in.Workspace.Members)

	core, err := renderCore(in, commands, names)
	if err != nil {
		return nil, err
	}

	files := make([]RuleFile, 0, len(in.Workspace.Members)+1)
	files = append(files, core)

	for i, member := range in.Workspace.Members {
		f, err := renderMember(member, names[i], commands)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, nil
}

type task struct {
	Label   string
	Command string
}

type memberRow struct {
	Name string
	Path string
	Role string
	Rule string
}

type coreData struct {
	ProjectName     string
	Manager         pkgmanager.Manager
	Marker          string
	Lockfile        string
	Commands        pkgmanager.Commands
	Tasks           []task
	Monorepo        bool
	WorkspaceSource string
	FilterExample   string
	Members         []memberRow
	Conventions     []string
}

// commonScripts are surfaced as "common tasks" when the root defines them.
var commonScripts = []task{
	{Label: "Start the dev server", Command: "dev"},
	{Label: "Build", Command: "build"},
	{Label: "Run tests", Command: "test"},
	{Label: "Lint", Command: "lint"},
	{Label: "Type-check", Command: "typecheck"},
	{Label: "Format", Command: "format"},
}

func renderCore(in Input, commands pkgmanager.Commands, names []string) (RuleFile, error) {
	ws := in.Workspace

	data := coreData{
		ProjectName:     ws.Name,
		Manager:         in.Detection.Manager,
		Marker:          in.Detection.Marker,
		Lockfile:        commands.Lockfile,
		Commands:        commands,
		Monorepo:        ws.IsMonorepo(),
		WorkspaceSource: string(ws.Source),
		Conventions:     in.Options.Conventions,
	}
	if in.Options.ProjectName != "" {
		data.ProjectName = in.Options.ProjectName
	}
	// bun.lockb and npm-shrinkwrap.json are not the manager's default lockfile.
	if in.Detection.Detected() && in.Detection.Marker != "" {
		data.Lockfile = in.Detection.Marker
	}

	for _, s := range commonScripts {
		if containsString(ws.Scripts, s.Command) {
			data.Tasks = append(data.Tasks, task{Label: s.Label, Command: commands.RunScript(s.Command)})
		}
	}

	for i, m := range ws.Members {
		data.Members = append(data.Members, memberRow{
			Name: m.Name,
			Path: m.Path,
			Role: m.Role.String(),
			Rule: names[i],
		})
		if data.FilterExample == "" && !m.IsRoot() {
			data.FilterExample = commands.Filter(m.Name, m.Path, exampleScript(m))
		}
	}
	if data.FilterExample == "" {
		data.FilterExample = commands.Filter("<name>", "<path>", "<script>")
	}

	var buf bytes.Buffer
	if err := coreTmpl.Execute(&buf, data); err != nil {
		return RuleFile{}, fmt.Errorf("failed to render core rule: %w", err)
	}

	return RuleFile{
		Path: CoreFile,
		Header: Header{
			Description: fmt.Sprintf("Project conventions and %s commands for %s", data.Manager, data.ProjectName),
			AlwaysApply: true,
		},
		Body: buf.String(),
	}, nil
}

type memberData struct {
	Name           string
	Description    string
	Path           string
	RoleLabel      string
	Private        bool
	Frameworks     []string
	Scripts        []string
	InstallCommand string
	AddCommand     string
	Guidance       []string
}

func renderMember(m workspace.Descriptor, fileName string, commands pkgmanager.Commands) (RuleFile, error) {
	data := memberData{
		Name:           m.Name,
		Description:    m.Description,
		Path:           m.Path,
		RoleLabel:      m.Role.Label(),
		Private:        m.Private,
		Frameworks:     m.Frameworks,
		InstallCommand: commands.Install,
		Guidance:       guidanceFor(m),
	}

	for _, s := range m.Scripts {
		if m.IsRoot() {
			data.Scripts = append(data.Scripts, commands.RunScript(s))
		} else {
			data.Scripts = append(data.Scripts, commands.Filter(m.Name, m.Path, s))
		}
	}
	if m.IsRoot() {
		data.AddCommand = commands.Add
	} else {
		data.AddCommand = commands.AddTo(m.Name, m.Path, "<pkg>")
	}

	var buf bytes.Buffer
	if err := memberTmpl.Execute(&buf, data); err != nil {
		return RuleFile{}, fmt.Errorf("failed to render rule for %s: %w", m.Name, err)
	}

	return RuleFile{
		Path: fileName,
		Header: Header{
			Description: fmt.Sprintf("Guidance for the %s %s", m.Name, m.Role.Label()),
			Globs:       m.Glob(),
			AlwaysApply: false,
		},
		Body: buf.String(),
	}, nil
}

func exampleScript(m workspace.Descriptor) string {
	for _, s := range []string{"build", "dev", "test"} {
		if m.HasScript(s) {
			return s
		}
	}
	if len(m.Scripts) > 0 {
		return m.Scripts[0]
	}
	return "build"
}

// assignFileNames derives a unique rule file name for every member.
// "core" is reserved for the core rule; collisions get -2, -3, ... suffixes
// in member order.
func assignFileNames(members []workspace.Descriptor) []string {
	used := map[string]bool{strings.TrimSuffix(CoreFile, Extension): true}
	names := make([]string, len(members))
	for i, m := range members {
		base := Slug(m.Name)
		slug := base
		for n := 2; used[slug]; n++ {
			slug = base + "-" + strconv.Itoa(n)
		}
		used[slug] = true
		names[i] = slug + Extension
	}
	return names
}

// Slug turns a package name into a file-name-safe identifier:
// "@acme/ui" becomes "acme-ui".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimPrefix(name, "@")) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "module"
	}
	return slug
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
