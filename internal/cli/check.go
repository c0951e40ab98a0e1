package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ohare93/rulegen/internal/rules"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify generated rules are up to date",
	Long: `Render the rules in memory and compare them with the output directory.
Exits non-zero when a rule is missing, differs from what would be generated,
or was generated before but is no longer produced. Nothing is written.

Useful in CI to catch a lockfile or workspace change without regenerated rules.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := p.render(); err != nil {
		return err
	}

	drift, err := rules.Check(p.outputDir(), p.files)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if drift.Clean() {
		fmt.Fprintf(out, "%d rules in %s are up to date\n", len(p.files), p.relOutputDir())
		return nil
	}

	for _, name := range drift.Missing {
		fmt.Fprintln(out, StyleCreate.Render("  missing   "+name))
	}
	for _, name := range drift.Stale {
		fmt.Fprintln(out, StyleUpdate.Render("  stale     "+name))
	}
	for _, name := range drift.Orphaned {
		fmt.Fprintln(out, StyleRemove.Render("  orphaned  "+name))
	}
	fmt.Fprintln(out, "\nRun 'rulegen generate' to update them.")

	n := len(drift.Missing) + len(drift.Stale) + len(drift.Orphaned)
	return fmt.Errorf("%w: %d files differ", rules.ErrDrift, n)
}
