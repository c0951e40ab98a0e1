package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/ohare93/rulegen/internal/cli.Version=..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rulegen",
	Short: "Generate Cursor rules for a JavaScript/TypeScript repository",
	Long: `rulegen inspects a JavaScript/TypeScript repository and writes Cursor
project rules (.mdc files) that teach the editor's agent how the project is
built.

It detects the package manager from lockfiles, discovers workspace members
from pnpm-workspace.yaml, package.json "workspaces" or deno.json, and renders:
  - core.mdc       always applied: install/run/add commands, workspace layout
  - <member>.mdc   scoped to each member's directory with its own commands

Running rulegen with no command is the same as "rulegen generate".

Lockfile precedence when several are present:
  pnpm-lock.yaml > bun.lock > bun.lockb > yarn.lock > deno.lock >
  package-lock.json > npm-shrinkwrap.json
With no lockfile, npm is assumed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runGenerate,
}

// GlobalOptions holds global flags shared by every command
type GlobalOptions struct {
	ProjectDir     string // Override for current working directory
	ConfigPath     string // Explicit config file instead of <root>/.rulegen.yaml
	OutputDir      string // Overrides output_dir from config
	PackageManager string // Overrides lockfile detection
	LogFormat      string // text or json
	Verbose        bool
	Quiet          bool
}

// GlobalOpts holds the parsed global flags (exported for testing)
var GlobalOpts GlobalOptions

// GetWorkingDir returns the working directory, respecting the --project-dir override
func GetWorkingDir() (string, error) {
	if GlobalOpts.ProjectDir != "" {
		return GlobalOpts.ProjectDir, nil
	}
	return os.Getwd()
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&GlobalOpts.ProjectDir, "project-dir", "", "Repository root (default: current directory)")
	flags.StringVar(&GlobalOpts.ConfigPath, "config", "", "Config file (default: <project-dir>/.rulegen.yaml)")
	flags.StringVar(&GlobalOpts.OutputDir, "output-dir", "", "Directory for generated rules (default: .cursor/rules)")
	flags.StringVar(&GlobalOpts.PackageManager, "package-manager", "", "Force a package manager: npm, pnpm, yarn, bun or deno")
	flags.StringVar(&GlobalOpts.LogFormat, "log-format", "", "Log format: text or json")
	flags.BoolVarP(&GlobalOpts.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&GlobalOpts.Quiet, "quiet", "q", false, "Only log errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	addWriteFlags(rootCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
