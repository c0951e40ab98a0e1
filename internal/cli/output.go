package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ohare93/rulegen/internal/rules"
)

// newTable returns a borderless table that renders to w.
func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

// printChanges reports one line per file and a closing summary.
func printChanges(w io.Writer, dir string, changes []rules.Change, dryRun bool) {
	counts := make(map[rules.Action]int)
	for _, c := range changes {
		counts[c.Action]++
		line := fmt.Sprintf("  %-9s %s", c.Action, c.Path)
		if c.Reason != "" {
			line += StyleDim.Render(" (" + c.Reason + ")")
		}
		fmt.Fprintln(w, GetActionStyle(c.Action).Render(line))
	}

	verb := "Wrote"
	if dryRun {
		verb = "Would write"
	}
	fmt.Fprintf(w, "\n%s %s: %d created, %d updated, %d unchanged, %d skipped, %d removed\n",
		verb, dir,
		counts[rules.ActionCreate],
		counts[rules.ActionUpdate],
		counts[rules.ActionUnchanged],
		counts[rules.ActionSkip],
		counts[rules.ActionRemove])
}
