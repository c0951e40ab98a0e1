package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Detect, scan and write Cursor rules",
	Long: `Detect the package manager, scan workspace members and write one rule per
member plus core.mdc into the output directory (default .cursor/rules).

Files that are already up to date are left alone. A rule file that exists but
was not written by rulegen is only overwritten with --force, or after
confirmation when running in a terminal. Rules from a previous run that are no
longer generated are removed. The list of generated files is kept in
.rulegen.json next to the rules.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

type writeOptions struct {
	dryRun bool
	force  bool
}

var writeOpts writeOptions

// addWriteFlags registers --dry-run and --force on cmd.
func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&writeOpts.dryRun, "dry-run", false, "Show what would be written without touching disk")
	cmd.Flags().BoolVar(&writeOpts.force, "force", false, "Overwrite rule files that were edited by hand")
}

func init() {
	addWriteFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := p.render(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Package manager: %s\n", StyleManager.Render(p.detection.Describe()))
	fmt.Fprintf(out, "Members: %d\n\n", len(p.workspace.Members))

	changes, err := p.writer(writeOpts.dryRun, writeOpts.force).Write(string(p.detection.Manager), p.files)
	if err != nil {
		return err
	}

	printChanges(out, p.relOutputDir(), changes, writeOpts.dryRun)
	return nil
}
