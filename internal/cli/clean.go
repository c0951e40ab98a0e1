package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ohare93/rulegen/internal/rules"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated rules",
	Long: `Remove every rule file listed in .rulegen.json, then the manifest itself.
Hand-written rules in the same directory are kept.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

var cleanOpts struct {
	dryRun bool
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanOpts.dryRun, "dry-run", false, "Show what would be removed")
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	changes, err := rules.Clean(p.outputDir(), cleanOpts.dryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(changes) == 0 {
		fmt.Fprintf(out, "No generated rules in %s\n", p.relOutputDir())
		return nil
	}

	verb := "Removed"
	if cleanOpts.dryRun {
		verb = "Would remove"
	}
	for _, c := range changes {
		fmt.Fprintln(out, StyleRemove.Render(fmt.Sprintf("  %s %s", verb, c.Path)))
	}
	p.logger.Info("cleaned rules", "dir", p.outputDir(), "files", len(changes), "dry_run", cleanOpts.dryRun)
	return nil
}
