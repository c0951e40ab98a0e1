package rules

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(dir string) *Writer {
	return &Writer{
		Dir:    dir,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

func sampleFiles() []RuleFile {
	return []RuleFile{
		{Path: "core.mdc", Header: Header{Description: "Core", AlwaysApply: true}, Body: "core body\n"},
		{Path: "web.mdc", Header: Header{Description: "Web", Globs: "apps/web/**"}, Body: "web body\n"},
	}
}

func actions(changes []Change) map[string]Action {
	out := make(map[string]Action, len(changes))
	for _, c := range changes {
		out[c.Path] = c.Action
	}
	return out
}

func TestWriter_CreatesFilesAndManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".cursor", "rules")
	w := newTestWriter(dir)

	changes, err := w.Write("pnpm", sampleFiles())
	require.NoError(t, err)
	assert.Equal(t, map[string]Action{"core.mdc": ActionCreate, "web.mdc": ActionCreate}, actions(changes))

	data, err := os.ReadFile(filepath.Join(dir, "web.mdc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "globs: apps/web/**")

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, []string{"core.mdc", "web.mdc"}, m.Files)
	assert.Equal(t, "pnpm", m.Manager)
	assert.NotEmpty(t, m.RunID)
}

func TestWriter_SecondRunUnchanged(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(dir)

	_, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)
	before, err := LoadManifest(dir)
	require.NoError(t, err)

	changes, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)
	assert.Equal(t, map[string]Action{"core.mdc": ActionUnchanged, "web.mdc": ActionUnchanged}, actions(changes))

	after, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, before.RunID, after.RunID, "manifest is not rewritten when nothing changed")
}

func TestWriter_UpdatesOwnedFile(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(dir)
	_, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)

	files := sampleFiles()
	files[1].Body = "new web body\n"
	changes, err := w.Write("npm", files)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, actions(changes)["web.mdc"])
}

func TestWriter_HandEditedFileNeedsForceOrConfirmation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web.mdc"), []byte("mine\n"), 0644))

	w := newTestWriter(dir)
	changes, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, actions(changes)["web.mdc"])
	data, _ := os.ReadFile(filepath.Join(dir, "web.mdc"))
	assert.Equal(t, "mine\n", string(data))

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"core.mdc"}, m.Files)

	asked := 0
	w.Confirm = func(string) (bool, error) {
		asked++
		return true, nil
	}
	changes, err = w.Write("npm", sampleFiles())
	require.NoError(t, err)
	assert.Equal(t, 1, asked)
	assert.Equal(t, ActionUpdate, actions(changes)["web.mdc"])
}

func TestWriter_Force(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web.mdc"), []byte("mine\n"), 0644))

	w := newTestWriter(dir)
	w.Force = true
	changes, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, actions(changes)["web.mdc"])
}

func TestWriter_ConfirmErrorCancels(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web.mdc"), []byte("mine\n"), 0644))

	w := newTestWriter(dir)
	w.Confirm = func(string) (bool, error) { return false, errors.New("interrupted") }
	_, err := w.Write("npm", sampleFiles())
	assert.Error(t, err)
}

func TestWriter_RemovesRulesNoLongerRendered(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(dir)
	_, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)

	changes, err := w.Write("npm", sampleFiles()[:1])
	require.NoError(t, err)
	assert.Equal(t, ActionRemove, actions(changes)["web.mdc"])
	assert.NoFileExists(t, filepath.Join(dir, "web.mdc"))
}

func TestWriter_DryRunTouchesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rules")
	w := newTestWriter(dir)
	w.DryRun = true

	changes, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)
	assert.Len(t, changes, 2)
	assert.NoDirExists(t, dir)
}

func TestWriter_OutputNotWritable(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0555))
	t.Cleanup(func() { _ = os.Chmod(parent, 0755) })

	w := newTestWriter(filepath.Join(parent, "rules"))
	_, err := w.Write("npm", sampleFiles())
	assert.ErrorIs(t, err, ErrOutputNotWritable)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(dir)
	_, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)

	drift, err := Check(dir, sampleFiles())
	require.NoError(t, err)
	assert.True(t, drift.Clean())

	files := append(sampleFiles()[:1], RuleFile{Path: "api.mdc", Body: "api\n"})
	files[0].Body = "changed\n"
	drift, err = Check(dir, files)
	require.NoError(t, err)
	assert.False(t, drift.Clean())
	assert.Equal(t, []string{"api.mdc"}, drift.Missing)
	assert.Equal(t, []string{"core.mdc"}, drift.Stale)
	assert.Equal(t, []string{"web.mdc"}, drift.Orphaned)
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	handWritten := filepath.Join(dir, "team.mdc")
	require.NoError(t, os.WriteFile(handWritten, []byte("---\ndescription: team\n---\n"), 0644))

	w := newTestWriter(dir)
	_, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)

	changes, err := Clean(dir, true)
	require.NoError(t, err)
	assert.Len(t, changes, 3)
	assert.FileExists(t, filepath.Join(dir, "core.mdc"))

	changes, err = Clean(dir, false)
	require.NoError(t, err)
	assert.Len(t, changes, 3)
	assert.NoFileExists(t, filepath.Join(dir, "core.mdc"))
	assert.NoFileExists(t, filepath.Join(dir, ManifestFile))
	assert.FileExists(t, handWritten)

	changes, err = Clean(dir, false)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

// hostileManifest writes a manifest into root/.cursor/rules that lists files
// outside the rules directory, and returns the rules directory and the victims.
func hostileManifest(t *testing.T) (string, []string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, ".cursor", "rules")
	require.NoError(t, os.MkdirAll(dir, 0755))

	victim := filepath.Join(root, "victim.txt")
	sibling := filepath.Join(root, ".cursor", "keep.mdc")
	for _, path := range []string{victim, sibling} {
		require.NoError(t, os.WriteFile(path, []byte("keep me"), 0644))
	}

	manifest := `{"files": ["../../victim.txt", "../keep.mdc", "` + filepath.ToSlash(victim) + `", "..", "old.mdc"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.mdc"), []byte("old"), 0644))
	return dir, []string{victim, sibling}
}

func TestLoadManifest_DropsEntriesOutsideDir(t *testing.T) {
	dir, victims := hostileManifest(t)

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, []string{"old.mdc"}, m.Files)
	assert.Len(t, m.Rejected, 4)
	assert.Contains(t, m.Rejected, filepath.ToSlash(victims[0]))
}

func TestWriter_IgnoresManifestEntriesOutsideDir(t *testing.T) {
	dir, victims := hostileManifest(t)
	w := newTestWriter(dir)

	changes, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)
	assert.Equal(t, map[string]Action{
		"core.mdc": ActionCreate,
		"web.mdc":  ActionCreate,
		"old.mdc":  ActionRemove,
	}, actions(changes))

	for _, v := range victims {
		assert.FileExists(t, v)
	}
	assert.NoFileExists(t, filepath.Join(dir, "old.mdc"))

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"core.mdc", "web.mdc"}, m.Files)
	assert.Empty(t, m.Rejected)
}

func TestClean_IgnoresManifestEntriesOutsideDir(t *testing.T) {
	dir, victims := hostileManifest(t)

	changes, err := Clean(dir, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]Action{"old.mdc": ActionRemove, ManifestFile: ActionRemove}, actions(changes))

	for _, v := range victims {
		assert.FileExists(t, v)
	}
}

func TestPathIn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rules")

	path, err := pathIn(dir, "core.mdc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "core.mdc"), path)

	for _, name := range []string{"..", "../x.mdc", filepath.Join("..", "..", "victim.txt"), "."} {
		_, err := pathIn(dir, name)
		assert.Error(t, err, name)
	}
}

func TestReadRules(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(dir)
	_, err := w.Write("npm", sampleFiles())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	got, err := ReadRules(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "core.mdc", got[0].Path)
	assert.True(t, got[0].Header.AlwaysApply)
	assert.Equal(t, "apps/web/**", got[1].Header.Globs)

	got, err = ReadRules(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
