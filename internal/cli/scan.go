package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List workspace members",
	Long: `Read the workspace configuration (pnpm-workspace.yaml, package.json
"workspaces" or deno.json "workspace") and list every member with its role,
scripts and detected frameworks. Members that were skipped are listed with the
reason.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := p.scan(); err != nil {
		return err
	}

	ws := p.workspace
	out := cmd.OutOrStdout()

	source := "none (single package)"
	if ws.IsMonorepo() {
		source = fmt.Sprintf("%s (%s)", ws.Source, strings.Join(ws.Patterns, ", "))
	}
	fmt.Fprintf(out, "Workspace: %s\n", StyleHighlight.Render(ws.Name))
	fmt.Fprintf(out, "Config:    %s\n\n", source)

	tbl := newTable(out)
	tbl.AppendHeader(table.Row{"Name", "Path", "Role", "Scripts", "Frameworks"})
	for _, m := range ws.Members {
		tbl.AppendRow(table.Row{
			m.Name,
			m.Path,
			m.Role.Label(),
			strings.Join(m.Scripts, ", "),
			strings.Join(m.Frameworks, ", "),
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d members", len(ws.Members))})
	tbl.Render()

	if len(ws.Skipped) > 0 {
		fmt.Fprintf(out, "\n%s\n", StyleWarning.Render(fmt.Sprintf("Skipped %d:", len(ws.Skipped))))
		for _, s := range ws.Skipped {
			fmt.Fprintf(out, "  %s %s\n", s.Path, StyleDim.Render("("+s.Reason+")"))
		}
	}
	return nil
}
