package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ohare93/rulegen/internal/rules"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List rule files in the output directory",
	Long: `List every .mdc file in the output directory with its scope and
description, marking the ones rulegen generated. Hand-written rules are
listed too.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	dir := p.outputDir()
	files, err := rules.ReadRules(dir)
	if err != nil {
		return err
	}
	manifest, err := rules.LoadManifest(dir)
	if err != nil {
		p.logger.Warn("ignoring unreadable manifest", "error", err)
		manifest = nil
	}

	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintf(out, "No rules in %s\n", p.relOutputDir())
		return nil
	}

	tbl := newTable(out)
	tbl.AppendHeader(table.Row{"File", "Scope", "Description", "Generated"})
	for _, f := range files {
		scope := f.Header.Globs
		if f.Header.AlwaysApply {
			scope = "always"
		}
		generated := ""
		if manifest.Owns(f.Path) {
			generated = "yes"
		}
		tbl.AppendRow(table.Row{f.Path, scope, f.Header.Description, generated})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d rules", len(files))})
	tbl.Render()

	if manifest != nil {
		fmt.Fprintln(out, StyleDim.Render(fmt.Sprintf("Last generated %s for %s (run %s)",
			manifest.GeneratedAt.Format("2006-01-02 15:04:05"), manifest.Manager, manifest.RunID)))
	}
	return nil
}
