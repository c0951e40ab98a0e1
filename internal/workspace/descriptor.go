package workspace

import (
	"path"
	"sort"
	"strings"
)

// Role is the inferred purpose of a workspace member.
type Role string

const (
	RoleRoot    Role = "root"
	RoleApp     Role = "app"
	RoleLibrary Role = "library"
	RoleService Role = "service"
	RoleTooling Role = "tooling"
	RoleExample Role = "example"
	RoleDocs    Role = "docs"
	RoleCLI     Role = "cli"
	RolePackage Role = "package"
)

// String returns the string representation of Role.
func (r Role) String() string {
	return string(r)
}

// Label is the human readable noun used in rendered guidance.
func (r Role) Label() string {
	switch r {
	case RoleRoot:
		return "repository root package"
	case RoleApp:
		return "application"
	case RoleLibrary:
		return "shared library"
	case RoleService:
		return "backend service"
	case RoleTooling:
		return "internal tooling package"
	case RoleExample:
		return "example project"
	case RoleDocs:
		return "documentation site"
	case RoleCLI:
		return "command-line package"
	default:
		return "package"
	}
}

// rolesByDir maps the first path segment of a member to its role.
var rolesByDir = map[string]Role{
	"apps":     RoleApp,
	"app":      RoleApp,
	"packages": RoleLibrary,
	"libs":     RoleLibrary,
	"lib":      RoleLibrary,
	"services": RoleService,
	"tools":    RoleTooling,
	"scripts":  RoleTooling,
	"examples": RoleExample,
	"docs":     RoleDocs,
}

// Descriptor describes one workspace member (or the root of a single-package repo).
type Descriptor struct {
	Path        string // Slash-separated, relative to the repository root; "." for the root
	Name        string // Declared package name
	Role        Role
	Description string
	Private     bool
	Scripts     []string // Script (or deno task) names, sorted
	Frameworks  []string // Notable dependencies, in notableDeps order
	Manifest    string   // Manifest file the name was read from
}

// IsRoot reports whether the descriptor is the repository root.
func (d Descriptor) IsRoot() bool {
	return d.Path == "."
}

// Glob is the applicability pattern for files belonging to this member.
func (d Descriptor) Glob() string {
	if d.IsRoot() {
		return "**/*"
	}
	return d.Path + "/**"
}

// HasScript reports whether the member defines the named script.
func (d Descriptor) HasScript(name string) bool {
	i := sort.SearchStrings(d.Scripts, name)
	return i < len(d.Scripts) && d.Scripts[i] == name
}

// inferRole classifies a member by its top directory, then by its manifest.
func inferRole(relPath string, m *manifest) Role {
	if relPath == "." {
		return RoleRoot
	}
	top := strings.SplitN(path.Clean(relPath), "/", 2)[0]
	if role, ok := rolesByDir[top]; ok {
		return role
	}
	if m != nil && m.hasBin() {
		return RoleCLI
	}
	return RolePackage
}

// notableDeps is the fixed list of dependencies surfaced in member rules.
var notableDeps = []struct {
	pkg   string
	label string
}{
	{"next", "Next.js"},
	{"@remix-run/react", "Remix"},
	{"astro", "Astro"},
	{"nuxt", "Nuxt"},
	{"@sveltejs/kit", "SvelteKit"},
	{"react-native", "React Native"},
	{"expo", "Expo"},
	{"electron", "Electron"},
	{"react", "React"},
	{"vue", "Vue"},
	{"svelte", "Svelte"},
	{"solid-js", "Solid"},
	{"@angular/core", "Angular"},
	{"@nestjs/core", "NestJS"},
	{"express", "Express"},
	{"fastify", "Fastify"},
	{"hono", "Hono"},
	{"vite", "Vite"},
	{"tailwindcss", "Tailwind CSS"},
	{"prisma", "Prisma"},
	{"drizzle-orm", "Drizzle ORM"},
	{"typescript", "TypeScript"},
	{"vitest", "Vitest"},
	{"jest", "Jest"},
	{"@playwright/test", "Playwright"},
	{"storybook", "Storybook"},
}

func detectFrameworks(m *manifest) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, dep := range notableDeps {
		if m.dependsOn(dep.pkg) {
			out = append(out, dep.label)
		}
	}
	return out
}
