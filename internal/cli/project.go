package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ohare93/rulegen/internal/config"
	"github.com/ohare93/rulegen/internal/pkgmanager"
	"github.com/ohare93/rulegen/internal/rules"
	"github.com/ohare93/rulegen/internal/workspace"
)

// project carries everything one command invocation works with: the
// repository root, merged configuration and the rendered rules.
type project struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger

	detection pkgmanager.Result
	workspace *workspace.Workspace
	files     []rules.RuleFile
}

// loadProject resolves the repository root, loads configuration, applies
// global flag overrides and sets up logging.
func loadProject(cmd *cobra.Command) (*project, error) {
	dir, err := GetWorkingDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	cfg, err := config.Load(root, GlobalOpts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if GlobalOpts.OutputDir != "" {
		cfg.OutputDir = GlobalOpts.OutputDir
	}
	if GlobalOpts.PackageManager != "" {
		cfg.PackageManager = GlobalOpts.PackageManager
	}
	if GlobalOpts.LogFormat != "" {
		cfg.Log.Format = GlobalOpts.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log, GlobalOpts.Verbose, GlobalOpts.Quiet)
	if err != nil {
		return nil, err
	}

	return &project{root: root, cfg: cfg, logger: logger}, nil
}

// outputDir is the absolute directory rules are written to.
func (p *project) outputDir() string {
	return p.cfg.OutputPath(p.root)
}

// detect resolves the package manager: flag or config override, then lockfiles.
func (p *project) detect() error {
	override, err := p.cfg.Manager()
	if err != nil {
		return err
	}
	p.detection = pkgmanager.Resolve(p.root, override, p.logger)
	p.logger.Debug("package manager resolved",
		"manager", p.detection.Manager,
		"source", p.detection.Source,
		"marker", p.detection.Marker)
	return nil
}

// scan discovers workspace members.
func (p *project) scan() error {
	ws, err := workspace.Scan(p.root, workspace.ScanOptions{
		IncludeRoot: p.cfg.IncludeRoot,
		Logger:      p.logger,
	})
	if err != nil {
		return err
	}
	p.workspace = ws
	p.logger.Debug("workspace scanned",
		"source", ws.Source,
		"members", len(ws.Members),
		"skipped", len(ws.Skipped))
	return nil
}

// render runs detection and scanning, then renders the rule files.
func (p *project) render() error {
	if err := p.detect(); err != nil {
		return err
	}
	if err := p.scan(); err != nil {
		return err
	}

	files, err := rules.Render(rules.Input{
		Detection: p.detection,
		Workspace: p.workspace,
		Options: rules.Options{
			ProjectName: p.cfg.ProjectName,
			Conventions: p.cfg.Conventions,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to render rules: %w", err)
	}
	p.files = files
	return nil
}

// writer returns a Writer for the output directory. Hand-edited rules are
// confirmed interactively when stdin is a terminal.
func (p *project) writer(dryRun, force bool) *rules.Writer {
	w := &rules.Writer{
		Dir:    p.outputDir(),
		DryRun: dryRun,
		Force:  force,
		Logger: p.logger,
	}
	if !dryRun && !force && isInteractive() {
		w.Confirm = ConfirmSingleKey
	}
	return w
}

// relOutputDir is the output directory relative to the root, for display.
func (p *project) relOutputDir() string {
	rel, err := filepath.Rel(p.root, p.outputDir())
	if err != nil {
		return p.outputDir()
	}
	return rel
}
