// Package workspace discovers the members of a JavaScript/TypeScript
// repository from its workspace configuration.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ConfigSource names the file the member list was read from.
type ConfigSource string

const (
	SourceNone        ConfigSource = ""
	SourcePnpm        ConfigSource = pnpmWorkspaceYAML
	SourcePackageJSON ConfigSource = packageJSON
	SourceDeno        ConfigSource = denoJSON
)

// Skip records a member that was left out and why.
type Skip struct {
	Path   string
	Reason string
}

// Workspace is the result of scanning one repository.
type Workspace struct {
	Root     string       // Absolute repository root
	Name     string       // Root package name, or the directory name
	Scripts  []string     // Root package scripts, sorted
	Source   ConfigSource
	Patterns []string     // Declared member patterns, in declaration order
	Members  []Descriptor // In declaration order
	Skipped  []Skip
}

// IsMonorepo reports whether a workspace configuration was found.
func (w *Workspace) IsMonorepo() bool {
	return w.Source != SourceNone
}

// MemberParents returns the directories, relative to Root in slash form, in
// which a new member matching an include pattern would be created. Negated
// patterns contribute nothing.
func (w *Workspace) MemberParents() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range w.Patterns {
		if strings.HasPrefix(p, "!") {
			continue
		}
		p = cleanPattern(p)
		if p == "" || p == "." {
			continue
		}
		base, _ := doublestar.SplitPattern(p)
		if !seen[base] {
			seen[base] = true
			out = append(out, base)
		}
	}
	return out
}

// ScanOptions controls a scan.
type ScanOptions struct {
	// IncludeRoot adds the root package as a member of a monorepo.
	IncludeRoot bool
	Logger      *slog.Logger
}

// Scan reads the workspace configuration under root and returns one
// descriptor per member directory with readable metadata. Members whose
// manifest is missing or malformed are skipped with a warning. A repository
// without workspace configuration is treated as a single package.
func Scan(root string, opts ScanOptions) (*Workspace, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	ws := &Workspace{Root: absRoot, Name: filepath.Base(absRoot)}

	rootManifest, err := readManifest(filepath.Join(absRoot, packageJSON))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("root package.json unreadable", "error", err)
		rootManifest = nil
	}
	if rootManifest != nil {
		if rootManifest.Name != "" {
			ws.Name = rootManifest.Name
		}
		ws.Scripts = rootManifest.scriptNames()
	}

	patterns, source, err := declaredPatterns(absRoot, rootManifest)
	if err != nil {
		return nil, err
	}
	ws.Source = source
	ws.Patterns = patterns

	if source == SourceNone {
		ws.Members = []Descriptor{rootDescriptor(ws.Name, rootManifest)}
		logger.Debug("no workspace configuration, treating repository as a single package", "name", ws.Name)
		return ws, nil
	}

	if opts.IncludeRoot {
		ws.Members = append(ws.Members, rootDescriptor(ws.Name, rootManifest))
	}

	dirs, err := expandPatterns(absRoot, patterns)
	if err != nil {
		return nil, err
	}

	candidates := []string{packageJSON}
	if source == SourceDeno {
		candidates = []string{denoJSON, packageJSON}
	}

	for _, rel := range dirs {
		d, err := describe(absRoot, rel, candidates)
		if err != nil {
			logger.Warn("skipping workspace member", "path", rel, "error", err)
			ws.Skipped = append(ws.Skipped, Skip{Path: rel, Reason: err.Error()})
			continue
		}
		ws.Members = append(ws.Members, d)
	}

	logger.Debug("scanned workspace",
		"source", string(source),
		"members", len(ws.Members),
		"skipped", len(ws.Skipped))

	return ws, nil
}

// declaredPatterns finds the workspace declaration.
// Priority: pnpm-workspace.yaml, package.json "workspaces", deno.json "workspace".
func declaredPatterns(root string, rootManifest *manifest) ([]string, ConfigSource, error) {
	// pnpm-workspace.yaml also holds settings (catalog, onlyBuiltDependencies)
	// for single-package repos; only a packages key declares a workspace.
	patterns, err := readPnpmWorkspace(filepath.Join(root, pnpmWorkspaceYAML))
	switch {
	case err == nil:
		if patterns != nil {
			return patterns, SourcePnpm, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, SourceNone, err
	}

	if rootManifest != nil {
		patterns, err := rootManifest.workspacePatterns()
		if err != nil {
			return nil, SourceNone, err
		}
		if patterns != nil {
			return patterns, SourcePackageJSON, nil
		}
	}

	deno, err := readManifest(filepath.Join(root, denoJSON))
	switch {
	case err == nil:
		if deno.Workspace != nil {
			return deno.Workspace, SourceDeno, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, SourceNone, fmt.Errorf("%w: %v", ErrInvalidWorkspaceConfig, err)
	}

	return nil, SourceNone, nil
}

func rootDescriptor(name string, m *manifest) Descriptor {
	d := Descriptor{Path: ".", Name: name, Role: RoleRoot}
	if m != nil {
		d.Description = m.Description
		d.Private = m.Private
		d.Scripts = m.scriptNames()
		d.Frameworks = detectFrameworks(m)
		d.Manifest = packageJSON
	}
	return d
}

// describe reads the first existing manifest among candidates in rel.
func describe(root, rel string, candidates []string) (Descriptor, error) {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	for _, name := range candidates {
		m, err := readManifest(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Descriptor{}, err
		}
		if strings.TrimSpace(m.Name) == "" {
			return Descriptor{}, fmt.Errorf("%s: %w", name, ErrMissingName)
		}
		return Descriptor{
			Path:        rel,
			Name:        m.Name,
			Role:        inferRole(rel, m),
			Description: m.Description,
			Private:     m.Private,
			Scripts:     m.scriptNames(),
			Frameworks:  detectFrameworks(m),
			Manifest:    name,
		}, nil
	}
	return Descriptor{}, fmt.Errorf("no %s found", strings.Join(candidates, " or "))
}

// expandPatterns resolves member patterns to directories relative to root.
// Patterns are processed in declaration order; matches of one pattern are
// sorted; "!" patterns exclude; duplicates keep their first position.
func expandPatterns(root string, patterns []string) ([]string, error) {
	var includes, excludes []string
	for _, p := range patterns {
		neg := strings.HasPrefix(p, "!")
		p = cleanPattern(strings.TrimPrefix(p, "!"))
		if p == "" || p == "." {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: bad pattern %q", ErrInvalidWorkspaceConfig, p)
		}
		if neg {
			excludes = append(excludes, p)
		} else {
			includes = append(includes, p)
		}
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var dirs []string

	for _, p := range includes {
		matches, err := doublestar.Glob(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidWorkspaceConfig, p, err)
		}
		sort.Strings(matches)

		for _, m := range matches {
			if seen[m] || inNodeModules(m) || excluded(m, excludes) {
				continue
			}
			info, err := fs.Stat(fsys, m)
			if err != nil || !info.IsDir() {
				continue
			}
			seen[m] = true
			dirs = append(dirs, m)
		}
	}

	return dirs, nil
}

func cleanPattern(p string) string {
	p = strings.TrimSpace(filepath.ToSlash(p))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

func excluded(rel string, excludes []string) bool {
	for _, ex := range excludes {
		if ok, _ := doublestar.Match(ex, rel); ok {
			return true
		}
	}
	return false
}

func inNodeModules(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if seg == "node_modules" {
			return true
		}
	}
	return false
}
