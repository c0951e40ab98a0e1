package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ohare93/rulegen/internal/tui"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Browse rendered rules before writing them",
	Long: `Open a full-screen preview of every rule rulegen would write, with the
action a write would take for each (create, update, unchanged, skip).

Navigation:
  tab/l       Next rule
  shift+tab/h Previous rule
  j/k         Scroll
  g/G         Top/bottom
  w/Enter     Write the rules and exit
  q/Esc       Exit without writing`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

var previewOpts struct {
	force bool
}

func init() {
	previewCmd.Flags().BoolVar(&previewOpts.force, "force", false, "Overwrite rule files that were edited by hand when writing")
}

func runPreview(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := p.render(); err != nil {
		return err
	}

	entries, err := previewEntries(p, previewOpts.force)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("rulegen preview: %s, %s", p.workspace.Name, p.detection.Describe())
	accepted, err := tui.Preview(title, entries)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !accepted {
		fmt.Fprintln(out, "Nothing written.")
		return nil
	}

	changes, err := p.writer(false, previewOpts.force).Write(string(p.detection.Manager), p.files)
	if err != nil {
		return err
	}
	printChanges(out, p.relOutputDir(), changes, false)
	return nil
}

// previewEntries pairs each rendered file with the action a write would take.
func previewEntries(p *project, force bool) ([]tui.Entry, error) {
	changes, err := p.writer(true, force).Write(string(p.detection.Manager), p.files)
	if err != nil {
		return nil, err
	}

	status := make(map[string]string, len(changes))
	for _, c := range changes {
		status[c.Path] = string(c.Action)
	}

	entries := make([]tui.Entry, len(p.files))
	for i, f := range p.files {
		entries[i] = tui.Entry{File: f, Status: status[f.Path]}
	}
	return entries, nil
}
