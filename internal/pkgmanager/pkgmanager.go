// Package pkgmanager detects which JavaScript package manager a repository uses
// and maps it to the commands agents should run.
package pkgmanager

import (
	"errors"
	"fmt"
	"strings"
)

// Manager identifies a JavaScript package manager.
type Manager string

const (
	NPM  Manager = "npm"
	PNPM Manager = "pnpm"
	Yarn Manager = "yarn"
	Bun  Manager = "bun"
	Deno Manager = "deno"
)

// Default is used when no marker file is present.
const Default = NPM

// ErrUnknownManager is returned by Parse for names outside the supported set.
var ErrUnknownManager = errors.New("unknown package manager")

// All returns every supported manager in a stable order.
func All() []Manager {
	return []Manager{NPM, PNPM, Yarn, Bun, Deno}
}

// String returns the string representation of Manager.
func (m Manager) String() string {
	return string(m)
}

// IsValid returns true if the Manager is a known valid type.
func (m Manager) IsValid() bool {
	switch m {
	case NPM, PNPM, Yarn, Bun, Deno:
		return true
	}
	return false
}

// Parse converts a user supplied name (flag or config) into a Manager.
// An empty string parses to the empty Manager, meaning "not set".
func Parse(name string) (Manager, error) {
	m := Manager(strings.ToLower(strings.TrimSpace(name)))
	if m == "" {
		return "", nil
	}
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q (supported: npm, pnpm, yarn, bun, deno)", ErrUnknownManager, name)
	}
	return m, nil
}

// Source records how a Result was obtained.
type Source string

const (
	SourceOverride Source = "override"
	SourceMarker   Source = "marker"
	SourceDefault  Source = "default"
)

// Result is the outcome of package manager detection for one run.
type Result struct {
	Manager Manager
	Marker  string // Marker file that matched, empty unless Source is SourceMarker
	Source  Source
}

// Detected reports whether the manager came from a marker file rather than a default.
func (r Result) Detected() bool {
	return r.Source == SourceMarker
}

// Commands returns the command table for the detected manager.
func (r Result) Commands() Commands {
	return CommandsFor(r.Manager)
}

// Describe renders a one-line human summary.
func (r Result) Describe() string {
	switch r.Source {
	case SourceMarker:
		return fmt.Sprintf("%s (found %s)", r.Manager, r.Marker)
	case SourceOverride:
		return fmt.Sprintf("%s (configured)", r.Manager)
	default:
		return fmt.Sprintf("%s (no lockfile found, using default)", r.Manager)
	}
}
