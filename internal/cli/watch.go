package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ohare93/rulegen/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate rules when lockfiles or manifests change",
	Long: `Generate rules once, then watch the repository root and every workspace
member for changes to lockfiles, package.json, pnpm-workspace.yaml, deno.json
and .rulegen.yaml. Bursts of changes (such as an install rewriting several
files) are coalesced into one regeneration.

The directory each workspace pattern expands under (packages/ for
"packages/*") is watched too, so adding or removing a member regenerates the
rules. Members nested deeper below a "**" pattern are picked up on the next
regeneration.

Hand-edited rule files are never overwritten in watch mode unless --force is
given. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchOpts struct {
	force bool
}

func init() {
	watchCmd.Flags().BoolVar(&watchOpts.force, "force", false, "Overwrite rule files that were edited by hand")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New()
	if err != nil {
		return err
	}
	defer w.Close()

	p, err := regenerate(cmd, w)
	if err != nil {
		return err
	}
	p.logger.Info("watching for changes", "root", p.root, "debounce", p.cfg.Watch.Debounce)

	err = w.Run(ctx, p.cfg.Watch.Debounce, func(e watcher.Event) {
		p.logger.Info("change detected", "type", e.Type, "path", e.Path)
		next, err := regenerate(cmd, w)
		if err != nil {
			p.logger.Error("regeneration failed", "error", err)
			return
		}
		p = next
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// regenerate reloads configuration, writes the rules and makes sure every
// current member directory is watched.
func regenerate(cmd *cobra.Command, w *watcher.Watcher) (*project, error) {
	p, err := loadProject(cmd)
	if err != nil {
		return nil, err
	}
	if err := p.render(); err != nil {
		return p, err
	}

	// A prompt would block the watch loop.
	wr := p.writer(false, watchOpts.force)
	wr.Confirm = nil
	changes, err := wr.Write(string(p.detection.Manager), p.files)
	if err != nil {
		return p, err
	}
	printChanges(cmd.OutOrStdout(), p.relOutputDir(), changes, false)

	if err := w.WatchDir(p.root); err != nil {
		return p, err
	}
	for _, rel := range p.workspace.MemberParents() {
		dir := filepath.Join(p.root, filepath.FromSlash(rel))
		if err := w.WatchParent(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("cannot watch member directory", "path", rel, "error", err)
		}
	}
	for _, m := range p.workspace.Members {
		dir := filepath.Join(p.root, filepath.FromSlash(m.Path))
		if err := w.WatchDir(dir); err != nil {
			p.logger.Warn("cannot watch member", "path", m.Path, "error", err)
		}
	}
	// A skipped member becomes valid once its manifest appears.
	for _, sk := range p.workspace.Skipped {
		dir := filepath.Join(p.root, filepath.FromSlash(sk.Path))
		if err := w.WatchDir(dir); err != nil {
			p.logger.Debug("cannot watch skipped member", "path", sk.Path, "error", err)
		}
	}
	return p, nil
}
