package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrOutputNotWritable wraps filesystem errors for the output directory.
	ErrOutputNotWritable = errors.New("output directory is not writable")
	// ErrConflict marks a rule file that was changed by hand and left alone.
	ErrConflict = errors.New("rule file was modified outside rulegen")
	// ErrDrift is returned when rule files on disk differ from a fresh render.
	ErrDrift = errors.New("rule files are out of date")
)

// Action is what the writer did (or would do) with one file.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionUnchanged Action = "unchanged"
	ActionSkip      Action = "skip"
	ActionRemove    Action = "remove"
)

// Change is one entry of a write report.
type Change struct {
	Path   string
	Action Action
	Reason string
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) (bool, error)

// Writer persists rendered rules into an output directory.
type Writer struct {
	Dir     string
	DryRun  bool
	Force   bool        // Overwrite files that were edited by hand
	Confirm ConfirmFunc // Asked before overwriting hand-edited files when not forced; nil skips them
	Logger  *slog.Logger
	Now     func() time.Time
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

// Write persists files and returns what happened to each, including rules
// from a previous run that are no longer rendered (removed).
func (w *Writer) Write(manager string, files []RuleFile) ([]Change, error) {
	log := w.logger()

	prev, err := LoadManifest(w.Dir)
	if err != nil {
		log.Warn("ignoring unreadable manifest", "error", err)
		prev = nil
	}
	if prev != nil && len(prev.Rejected) > 0 {
		log.Warn("ignoring manifest entries outside the output directory", "entries", prev.Rejected)
	}

	if !w.DryRun {
		if err := os.MkdirAll(w.Dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOutputNotWritable, err)
		}
	}

	var changes []Change
	var owned []string
	rendered := make(map[string]bool, len(files))
	dirty := prev == nil

	for _, f := range files {
		rendered[f.Path] = true

		content, err := f.Content()
		if err != nil {
			return changes, err
		}

		change, err := w.writeOne(f.Path, []byte(content), prev)
		if err != nil {
			return changes, err
		}
		changes = append(changes, change)

		switch change.Action {
		case ActionCreate, ActionUpdate:
			dirty = true
			owned = append(owned, f.Path)
		case ActionUnchanged:
			owned = append(owned, f.Path)
			if !prev.Owns(f.Path) {
				dirty = true
			}
		}
	}

	if prev != nil {
		for _, name := range prev.Files {
			if rendered[name] {
				continue
			}
			dirty = true
			if err := w.remove(name); err != nil {
				return changes, err
			}
			changes = append(changes, Change{Path: name, Action: ActionRemove, Reason: "no longer generated"})
		}
	}

	if dirty && !w.DryRun {
		if err := NewManifest(manager, owned, w.now()).Save(w.Dir); err != nil {
			return changes, fmt.Errorf("%w: %w", ErrOutputNotWritable, err)
		}
	}

	return changes, nil
}

func (w *Writer) writeOne(name string, content []byte, prev *Manifest) (Change, error) {
	path := filepath.Join(w.Dir, name)

	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := w.put(path, content); err != nil {
			return Change{}, err
		}
		return Change{Path: name, Action: ActionCreate}, nil
	case err != nil:
		return Change{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if bytes.Equal(existing, content) {
		return Change{Path: name, Action: ActionUnchanged}, nil
	}

	if !prev.Owns(name) && !w.Force {
		overwrite := false
		if w.Confirm != nil && !w.DryRun {
			overwrite, err = w.Confirm(fmt.Sprintf("%s was edited by hand. Overwrite it?", path))
			if err != nil {
				return Change{}, fmt.Errorf("operation cancelled: %w", err)
			}
		}
		if !overwrite {
			w.logger().Warn("leaving hand-edited rule file alone", "path", path)
			return Change{Path: name, Action: ActionSkip, Reason: ErrConflict.Error()}, nil
		}
	}

	if err := w.put(path, content); err != nil {
		return Change{}, err
	}
	return Change{Path: name, Action: ActionUpdate}, nil
}

func (w *Writer) put(path string, content []byte) error {
	if w.DryRun {
		return nil
	}
	if err := writeFile(path, content); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputNotWritable, err)
	}
	w.logger().Debug("wrote rule file", "path", path)
	return nil
}

func (w *Writer) remove(name string) error {
	if w.DryRun {
		return nil
	}
	path, err := pathIn(w.Dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Drift describes how the output directory differs from a fresh render.
type Drift struct {
	Missing  []string // Rendered but absent on disk
	Stale    []string // Present with different content
	Orphaned []string // Listed in the manifest but no longer rendered
}

// Clean reports whether there is no drift at all.
func (d Drift) Clean() bool {
	return len(d.Missing) == 0 && len(d.Stale) == 0 && len(d.Orphaned) == 0
}

// Check compares files against the output directory without modifying it.
func Check(dir string, files []RuleFile) (Drift, error) {
	var drift Drift
	rendered := make(map[string]bool, len(files))

	for _, f := range files {
		rendered[f.Path] = true
		content, err := f.Content()
		if err != nil {
			return drift, err
		}

		existing, err := os.ReadFile(filepath.Join(dir, f.Path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			drift.Missing = append(drift.Missing, f.Path)
		case err != nil:
			return drift, fmt.Errorf("failed to read %s: %w", f.Path, err)
		case !bytes.Equal(existing, []byte(content)):
			drift.Stale = append(drift.Stale, f.Path)
		}
	}

	manifest, err := LoadManifest(dir)
	if err != nil {
		return drift, err
	}
	if manifest != nil {
		for _, name := range manifest.Files {
			if !rendered[name] {
				drift.Orphaned = append(drift.Orphaned, name)
			}
		}
	}

	return drift, nil
}

// Clean removes every file listed in the manifest, then the manifest itself.
// Hand-written rules that rulegen never generated are left untouched.
func Clean(dir string, dryRun bool) ([]Change, error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, nil
	}

	var changes []Change
	for _, name := range append(append([]string(nil), manifest.Files...), ManifestFile) {
		path, err := pathIn(dir, name)
		if err != nil {
			return changes, err
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if !dryRun {
			if err := os.Remove(path); err != nil {
				return changes, fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
		changes = append(changes, Change{Path: name, Action: ActionRemove})
	}
	return changes, nil
}

// ReadRules loads every .mdc file in dir, sorted by name. Files with an
// unparseable header are returned with an empty Header.
func ReadRules(dir string) ([]RuleFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var out []RuleFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Extension {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		h, body, _ := Parse(string(data))
		out = append(out, RuleFile{Path: e.Name(), Header: h, Body: body})
	}
	return out, nil
}

// pathIn joins dir and name, refusing names that resolve outside dir.
func pathIn(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("refusing to remove %q: not inside %s", name, dir)
	}
	return path, nil
}

// writeFile writes content to path, creating directories if needed.
func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
