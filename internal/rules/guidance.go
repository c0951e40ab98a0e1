package rules

import "github.com/ohare93/rulegen/internal/workspace"

var roleGuidance = map[workspace.Role][]string{
	workspace.RoleRoot: {
		"Keep root-level configuration minimal and shared by the whole repository.",
		"Prefer the existing scripts over ad-hoc commands.",
	},
	workspace.RoleApp: {
		"This is a deployable application. Do not import from other applications; share code through library members.",
		"Read environment-specific settings from environment variables, never hard-code them.",
	},
	workspace.RoleLibrary: {
		"Exports are consumed by other members. Treat them as a public API and keep them backwards compatible.",
		"Do not depend on application members.",
		"Re-export new public modules from the package entry point.",
	},
	workspace.RoleService: {
		"Validate all external input at the boundary of the service.",
		"Keep request handlers thin and move logic into testable modules.",
	},
	workspace.RoleTooling: {
		"Tooling code runs in development and CI only. Keep it free of runtime dependencies of the product.",
	},
	workspace.RoleExample: {
		"Examples document usage. Keep them minimal and runnable against the current public APIs.",
	},
	workspace.RoleDocs: {
		"Keep documentation in sync with the code it describes and check that code samples compile.",
	},
	workspace.RoleCLI: {
		"Preserve the existing command-line flags and output format; scripts may depend on them.",
		"Exit with a non-zero status on failure.",
	},
	workspace.RolePackage: {
		"Follow the structure already used in this package.",
	},
}

var frameworkGuidance = map[string]string{
	"Next.js":      "Follow the Next.js routing layout already in use (app/ or pages/); do not mix both.",
	"Remix":        "Keep data loading in route loaders and actions.",
	"Astro":        "Prefer static Astro components; add client-side islands only where interaction is needed.",
	"React":        "Write function components with hooks; no class components.",
	"Vue":          "Use single-file components in the style already present.",
	"Svelte":       "Keep component state local and lift it into stores only when shared.",
	"Angular":      "Follow the Angular module and service structure already present.",
	"NestJS":       "Register new providers in the owning module and use dependency injection.",
	"Express":      "Register routes through the existing router modules.",
	"Fastify":      "Register routes as Fastify plugins with schemas for input validation.",
	"Hono":         "Compose routes with Hono sub-apps as the existing code does.",
	"Tailwind CSS": "Style with Tailwind utility classes instead of new stylesheets.",
	"Prisma":       "Change the database schema through Prisma migrations only.",
	"Drizzle ORM":  "Change the database schema through Drizzle migrations only.",
	"TypeScript":   "Keep the code type-safe. Avoid `any` and non-null assertions.",
	"Vitest":       "Write tests with Vitest next to the code they cover.",
	"Jest":         "Write tests with Jest next to the code they cover.",
	"Playwright":   "End-to-end tests use Playwright; keep them independent of each other.",
}

// guidanceFor returns role guidance followed by framework guidance, in a
// fixed order.
func guidanceFor(d workspace.Descriptor) []string {
	lines := append([]string(nil), roleGuidance[d.Role]...)
	if len(lines) == 0 {
		lines = append(lines, roleGuidance[workspace.RolePackage]...)
	}
	for _, fw := range d.Frameworks {
		if g, ok := frameworkGuidance[fw]; ok {
			lines = append(lines, g)
		}
	}
	return lines
}
