package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ManifestFile records which files in the output directory rulegen owns.
const ManifestFile = ".rulegen.json"

// Manifest is persisted next to the generated rules.
type Manifest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Manager     string    `json:"manager"`
	Files       []string  `json:"files"`

	// Rejected holds entries dropped on load because they name something
	// other than a rule file directly inside the output directory.
	Rejected []string `json:"-"`
}

// NewManifest creates a manifest for a fresh generation run.
func NewManifest(manager string, files []string, now time.Time) *Manifest {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	return &Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC(),
		Manager:     manager,
		Files:       sorted,
	}
}

// Owns reports whether name was written by a previous run.
func (m *Manifest) Owns(name string) bool {
	if m == nil {
		return false
	}
	i := sort.SearchStrings(m.Files, name)
	return i < len(m.Files) && m.Files[i] == name
}

// LoadManifest reads the manifest from dir. A missing manifest yields (nil, nil).
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	files := m.Files[:0]
	for _, name := range m.Files {
		if validEntry(name) {
			files = append(files, name)
		} else {
			m.Rejected = append(m.Rejected, name)
		}
	}
	m.Files = files
	sort.Strings(m.Files)
	return &m, nil
}

// validEntry reports whether name is a bare rule file name.
func validEntry(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name || filepath.IsAbs(name) {
		return false
	}
	return filepath.Ext(name) == Extension
}

// Save writes the manifest into dir.
func (m *Manifest) Save(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	data = append(data, '\n')
	return writeFile(filepath.Join(dir, ManifestFile), data)
}
