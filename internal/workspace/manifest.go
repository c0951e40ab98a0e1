package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	packageJSON       = "package.json"
	denoJSON          = "deno.json"
	pnpmWorkspaceYAML = "pnpm-workspace.yaml"
)

var (
	// ErrInvalidWorkspaceConfig is returned when the workspace declaration itself cannot be parsed.
	ErrInvalidWorkspaceConfig = errors.New("invalid workspace configuration")
	// ErrMissingName is returned for manifests without a "name" field.
	ErrMissingName = errors.New("manifest has no name")
)

// manifest is the subset of package.json / deno.json the scanner reads.
type manifest struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Private         bool              `json:"private"`
	Scripts         map[string]string `json:"scripts"`
	Tasks           map[string]any    `json:"tasks"`
	Bin             json.RawMessage   `json:"bin"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Imports         map[string]string `json:"imports"`
	Workspaces      json.RawMessage   `json:"workspaces"`
	Workspace       []string          `json:"workspace"`
}

func (m *manifest) hasBin() bool {
	b := bytes.TrimSpace(m.Bin)
	return len(b) > 0 && !bytes.Equal(b, []byte("null"))
}

func (m *manifest) dependsOn(pkg string) bool {
	if _, ok := m.Dependencies[pkg]; ok {
		return true
	}
	if _, ok := m.DevDependencies[pkg]; ok {
		return true
	}
	// deno import maps: "react": "npm:react@^18"
	_, ok := m.Imports[pkg]
	return ok
}

// scriptNames merges npm scripts and deno tasks into one sorted list.
func (m *manifest) scriptNames() []string {
	seen := make(map[string]bool, len(m.Scripts)+len(m.Tasks))
	names := make([]string, 0, len(m.Scripts)+len(m.Tasks))
	for name := range m.Scripts {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range m.Tasks {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// workspacePatterns decodes the package.json "workspaces" field, which is
// either an array of globs or an object with a "packages" array (yarn classic).
func (m *manifest) workspacePatterns() ([]string, error) {
	raw := bytes.TrimSpace(m.Workspaces)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: package.json workspaces: %v", ErrInvalidWorkspaceConfig, err)
	}
	return obj.Packages, nil
}

// readManifest parses a JSON manifest file.
func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &m, nil
}

// pnpmWorkspace is the subset of pnpm-workspace.yaml the scanner reads.
type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

func readPnpmWorkspace(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ws pnpmWorkspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorkspaceConfig, pnpmWorkspaceYAML, err)
	}
	return ws.Packages, nil
}
