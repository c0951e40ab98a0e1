package pkgmanager

import "strings"

// Commands is the static command table for one package manager.
// Templates use the <script>, <pkg>, <name> and <path> placeholders.
type Commands struct {
	Manager    Manager
	Install    string
	Run        string // run a root script: "<script>" placeholder
	FilterRun  string // run a script in one workspace member
	Add        string
	AddDev     string
	Exec       string // one-off binary runner
	Lockfile   string
	CleanCache string
}

var commandTable = map[Manager]Commands{
	NPM: {
		Manager:    NPM,
		Install:    "npm install",
		Run:        "npm run <script>",
		FilterRun:  "npm run <script> --workspace=<name>",
		Add:        "npm install <pkg>",
		AddDev:     "npm install --save-dev <pkg>",
		Exec:       "npx <pkg>",
		Lockfile:   "package-lock.json",
		CleanCache: "npm cache clean --force",
	},
	PNPM: {
		Manager:    PNPM,
		Install:    "pnpm install",
		Run:        "pnpm run <script>",
		FilterRun:  "pnpm --filter <name> run <script>",
		Add:        "pnpm add <pkg>",
		AddDev:     "pnpm add -D <pkg>",
		Exec:       "pnpm dlx <pkg>",
		Lockfile:   "pnpm-lock.yaml",
		CleanCache: "pnpm store prune",
	},
	Yarn: {
		Manager:    Yarn,
		Install:    "yarn install",
		Run:        "yarn run <script>",
		FilterRun:  "yarn workspace <name> run <script>",
		Add:        "yarn add <pkg>",
		AddDev:     "yarn add --dev <pkg>",
		Exec:       "yarn dlx <pkg>",
		Lockfile:   "yarn.lock",
		CleanCache: "yarn cache clean",
	},
	Bun: {
		Manager:    Bun,
		Install:    "bun install",
		Run:        "bun run <script>",
		FilterRun:  "bun run --filter <name> <script>",
		Add:        "bun add <pkg>",
		AddDev:     "bun add --dev <pkg>",
		Exec:       "bunx <pkg>",
		Lockfile:   "bun.lock",
		CleanCache: "bun pm cache rm",
	},
	Deno: {
		Manager:    Deno,
		Install:    "deno install",
		Run:        "deno task <script>",
		FilterRun:  "deno task --cwd <path> <script>",
		Add:        "deno add npm:<pkg>",
		AddDev:     "deno add --dev npm:<pkg>",
		Exec:       "deno run -A npm:<pkg>",
		Lockfile:   "deno.lock",
		CleanCache: "deno clean",
	},
}

// CommandsFor returns the command table for m, falling back to the default
// manager for unknown values.
func CommandsFor(m Manager) Commands {
	if c, ok := commandTable[m]; ok {
		return c
	}
	return commandTable[Default]
}

// RunScript renders the root script command.
func (c Commands) RunScript(script string) string {
	return strings.ReplaceAll(c.Run, "<script>", script)
}

// Filter renders the command that runs script inside one workspace member.
// name is the member's declared package name; path its directory relative
// to the repository root (only deno addresses members by path).
func (c Commands) Filter(name, path, script string) string {
	r := strings.NewReplacer("<name>", name, "<path>", path, "<script>", script)
	return r.Replace(c.FilterRun)
}

// AddTo renders the command that adds pkg as a dependency of one member.
func (c Commands) AddTo(name, path, pkg string) string {
	switch c.Manager {
	case PNPM:
		return "pnpm --filter " + name + " add " + pkg
	case Yarn:
		return "yarn workspace " + name + " add " + pkg
	case NPM:
		return "npm install " + pkg + " --workspace=" + name
	case Bun:
		return "cd " + path + " && bun add " + pkg
	case Deno:
		return "cd " + path + " && deno add npm:" + pkg
	}
	return strings.ReplaceAll(c.Add, "<pkg>", pkg)
}
