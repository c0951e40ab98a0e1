package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ohare93/rulegen/internal/pkgmanager"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the detected package manager and its commands",
	Long: `Print the package manager rulegen would use for this repository, how it
was chosen, and the commands the generated rules will recommend.

Use --markers to list every lockfile rulegen looks for, in precedence order,
and which of them are present.`,
	Args: cobra.NoArgs,
	RunE: runDetect,
}

var detectOpts struct {
	markers bool
}

func init() {
	detectCmd.Flags().BoolVar(&detectOpts.markers, "markers", false, "List lockfiles in precedence order")
}

func runDetect(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := p.detect(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Package manager: %s\n\n", StyleManager.Render(p.detection.Describe()))

	c := p.detection.Commands()
	tbl := newTable(out)
	tbl.AppendHeader(table.Row{"Task", "Command"})
	tbl.AppendRows([]table.Row{
		{"install", c.Install},
		{"run script", c.Run},
		{"run in member", c.FilterRun},
		{"add dependency", c.Add},
		{"add dev dependency", c.AddDev},
		{"execute binary", c.Exec},
		{"clean cache", c.CleanCache},
		{"lockfile", c.Lockfile},
	})
	tbl.Render()

	if detectOpts.markers {
		fmt.Fprintln(out)
		renderMarkers(out, p)
	}
	return nil
}

func renderMarkers(out io.Writer, p *project) {
	tbl := newTable(out)
	tbl.AppendHeader(table.Row{"#", "Lockfile", "Manager", "Present"})
	for i, m := range pkgmanager.Markers() {
		present := ""
		if _, err := os.Stat(filepath.Join(p.root, m.File)); err == nil {
			present = "yes"
		} else if !errors.Is(err, fs.ErrNotExist) {
			present = "?"
		}
		if m.File == p.detection.Marker {
			present = StyleHighlight.Render("yes (used)")
		}
		tbl.AppendRow(table.Row{i + 1, m.File, m.Manager, present})
	}
	tbl.Render()
}
