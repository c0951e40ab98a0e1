package pkgmanager

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Marker pairs a lockfile name with the manager it identifies.
type Marker struct {
	File    string
	Manager Manager
}

// markers is checked top to bottom and the first hit wins. npm sits last
// because a package-lock.json left behind after switching managers is the
// most common reason two lockfiles coexist.
var markers = []Marker{
	{File: "pnpm-lock.yaml", Manager: PNPM},
	{File: "bun.lock", Manager: Bun},
	{File: "bun.lockb", Manager: Bun},
	{File: "yarn.lock", Manager: Yarn},
	{File: "deno.lock", Manager: Deno},
	{File: "package-lock.json", Manager: NPM},
	{File: "npm-shrinkwrap.json", Manager: NPM},
}

// Markers returns the marker table in precedence order.
func Markers() []Marker {
	out := make([]Marker, len(markers))
	copy(out, markers)
	return out
}

// IsMarker reports whether a base file name is one of the lockfile markers.
func IsMarker(name string) bool {
	for _, m := range markers {
		if m.File == name {
			return true
		}
	}
	return false
}

// Resolve determines the package manager for a repository.
// Priority (highest to lowest):
//  1. Override (from flag or config, if non-empty)
//  2. Lockfile markers in the repository root
//  3. Default: npm
func Resolve(root string, override Manager, logger *slog.Logger) Result {
	if override != "" {
		return Result{Manager: override, Source: SourceOverride}
	}
	return Detect(root, logger)
}

// Detect checks the repository root for lockfile markers.
// Read failures other than "does not exist" are logged and the marker is
// treated as absent, so detection always yields a result.
func Detect(root string, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	for _, m := range markers {
		path := filepath.Join(root, m.File)
		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("cannot read lockfile marker, ignoring it", "path", path, "error", err)
			}
			continue
		}
		if info.IsDir() {
			continue
		}
		return Result{Manager: m.Manager, Marker: m.File, Source: SourceMarker}
	}

	logger.Info("no lockfile found, assuming default package manager", "manager", Default)
	return Result{Manager: Default, Source: SourceDefault}
}
