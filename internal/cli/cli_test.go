package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohare93/rulegen/internal/pkgmanager"
	"github.com/ohare93/rulegen/internal/rules"
)

// resetFlags restores every flag to its default so commands can run
// repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func pnpmRepo(t *testing.T) string {
	return writeRepo(t, map[string]string{
		"pnpm-lock.yaml":           "lockfileVersion: '9.0'\n",
		"pnpm-workspace.yaml":      "packages:\n  - apps/*\n  - packages/*\n",
		"package.json":             `{"name": "acme", "private": true, "scripts": {"build": "turbo build", "test": "turbo test"}}`,
		"apps/web/package.json":    `{"name": "web", "scripts": {"dev": "next dev", "build": "next build"}, "dependencies": {"next": "14.0.0", "react": "18.2.0"}}`,
		"packages/ui/package.json": `{"name": "@acme/ui", "description": "Shared components."}`,
	})
}

func rulesDir(root string) string {
	return filepath.Join(root, ".cursor", "rules")
}

func TestGenerate_PnpmMonorepo(t *testing.T) {
	root := pnpmRepo(t)

	out, _, err := runCLI(t, "--project-dir", root, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "pnpm (found pnpm-lock.yaml)")
	assert.Contains(t, out, "Members: 2")
	assert.Contains(t, out, "3 created")

	for _, name := range []string{"core.mdc", "web.mdc", "acme-ui.mdc", rules.ManifestFile} {
		assert.FileExists(t, filepath.Join(rulesDir(root), name))
	}

	core, err := os.ReadFile(filepath.Join(rulesDir(root), "core.mdc"))
	require.NoError(t, err)
	assert.Contains(t, string(core), "alwaysApply: true")
	assert.Contains(t, string(core), "\npnpm install\n")
	assert.NotContains(t, string(core), "\nnpm install\n")
}

func TestRootCommandGenerates(t *testing.T) {
	root := pnpmRepo(t)

	_, _, err := runCLI(t, "--project-dir", root)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(rulesDir(root), "core.mdc"))

	out, _, err := runCLI(t, "--project-dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, "0 created, 0 updated, 3 unchanged")
}

func TestGenerate_DryRun(t *testing.T) {
	root := pnpmRepo(t)

	out, _, err := runCLI(t, "--project-dir", root, "generate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would write")
	assert.NoDirExists(t, rulesDir(root))
}

func TestGenerate_HandEditedFileSkippedUnlessForced(t *testing.T) {
	root := pnpmRepo(t)
	require.NoError(t, os.MkdirAll(rulesDir(root), 0755))
	webRule := filepath.Join(rulesDir(root), "web.mdc")
	require.NoError(t, os.WriteFile(webRule, []byte("---\ndescription: mine\n---\n"), 0644))

	out, _, err := runCLI(t, "--project-dir", root, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "1 skipped")
	data, _ := os.ReadFile(webRule)
	assert.Contains(t, string(data), "description: mine")

	_, _, err = runCLI(t, "--project-dir", root, "generate", "--force")
	require.NoError(t, err)
	data, _ = os.ReadFile(webRule)
	assert.NotContains(t, string(data), "description: mine")
}

func TestGenerate_OutputDirFlag(t *testing.T) {
	root := pnpmRepo(t)

	_, _, err := runCLI(t, "--project-dir", root, "--output-dir", "rules", "generate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "rules", "core.mdc"))
	assert.NoDirExists(t, rulesDir(root))
}

func TestGenerate_ConfigFile(t *testing.T) {
	root := pnpmRepo(t)
	cfg := "project_name: Acme Platform\nconventions:\n  - Use conventional commits.\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".rulegen.yaml"), []byte(cfg), 0644))

	_, _, err := runCLI(t, "--project-dir", root)
	require.NoError(t, err)

	core, err := os.ReadFile(filepath.Join(rulesDir(root), "core.mdc"))
	require.NoError(t, err)
	assert.Contains(t, string(core), "Acme Platform")
	assert.Contains(t, string(core), "- Use conventional commits.")
}

func TestGenerate_InvalidPackageManager(t *testing.T) {
	root := pnpmRepo(t)

	_, _, err := runCLI(t, "--project-dir", root, "--package-manager", "maven")
	assert.ErrorIs(t, err, pkgmanager.ErrUnknownManager)
}

func TestCheck(t *testing.T) {
	root := pnpmRepo(t)

	_, _, err := runCLI(t, "--project-dir", root, "check")
	assert.ErrorIs(t, err, rules.ErrDrift)

	_, _, err = runCLI(t, "--project-dir", root, "generate")
	require.NoError(t, err)

	out, _, err := runCLI(t, "--project-dir", root, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	core := filepath.Join(rulesDir(root), "core.mdc")
	require.NoError(t, os.WriteFile(core, []byte("changed\n"), 0644))

	out, _, err = runCLI(t, "--project-dir", root, "check")
	assert.ErrorIs(t, err, rules.ErrDrift)
	assert.Contains(t, out, "stale     core.mdc")
}

func TestCheck_DetectsLockfileSwitch(t *testing.T) {
	root := pnpmRepo(t)
	_, _, err := runCLI(t, "--project-dir", root, "generate")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "pnpm-lock.yaml")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "yarn.lock"), []byte("# yarn\n"), 0644))

	_, _, err = runCLI(t, "--project-dir", root, "check")
	assert.ErrorIs(t, err, rules.ErrDrift)
}

func TestClean(t *testing.T) {
	root := pnpmRepo(t)
	_, _, err := runCLI(t, "--project-dir", root, "generate")
	require.NoError(t, err)

	out, _, err := runCLI(t, "--project-dir", root, "clean", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would remove core.mdc")
	assert.FileExists(t, filepath.Join(rulesDir(root), "core.mdc"))

	_, _, err = runCLI(t, "--project-dir", root, "clean")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(rulesDir(root), "core.mdc"))
	assert.NoFileExists(t, filepath.Join(rulesDir(root), rules.ManifestFile))

	out, _, err = runCLI(t, "--project-dir", root, "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "No generated rules")
}

func TestDetect(t *testing.T) {
	root := pnpmRepo(t)

	out, _, err := runCLI(t, "--project-dir", root, "detect")
	require.NoError(t, err)
	assert.Contains(t, out, "pnpm (found pnpm-lock.yaml)")
	assert.Contains(t, out, "pnpm install")
	assert.Contains(t, out, "pnpm --filter <name> run <script>")
	assert.NotContains(t, out, "npm-shrinkwrap.json")

	out, _, err = runCLI(t, "--project-dir", root, "detect", "--markers")
	require.NoError(t, err)
	assert.Contains(t, out, "npm-shrinkwrap.json")
	assert.Contains(t, out, "yes (used)")
}

func TestDetect_OverrideAndDefault(t *testing.T) {
	root := pnpmRepo(t)
	out, _, err := runCLI(t, "--project-dir", root, "--package-manager", "bun", "detect")
	require.NoError(t, err)
	assert.Contains(t, out, "bun (configured)")

	empty := t.TempDir()
	out, _, err = runCLI(t, "--project-dir", empty, "detect")
	require.NoError(t, err)
	assert.Contains(t, out, "npm (no lockfile found, using default)")
}

func TestScan(t *testing.T) {
	root := pnpmRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "packages", "broken"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "packages", "broken", "package.json"), []byte("{not json"), 0644))

	out, stderr, err := runCLI(t, "--project-dir", root, "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "Workspace: acme")
	assert.Contains(t, out, "pnpm-workspace.yaml (apps/*, packages/*)")
	assert.Contains(t, out, "apps/web")
	assert.Contains(t, out, "@acme/ui")
	assert.Contains(t, out, "Next.js")
	assert.Contains(t, out, "TOTAL: 2 MEMBERS")
	assert.Contains(t, out, "Skipped 1:")
	assert.Contains(t, out, "packages/broken")
	assert.Contains(t, stderr, "level=WARN")
}

func TestList(t *testing.T) {
	root := pnpmRepo(t)

	out, _, err := runCLI(t, "--project-dir", root, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No rules in .cursor/rules")

	_, _, err = runCLI(t, "--project-dir", root, "generate")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(rulesDir(root), "team.mdc"),
		[]byte("---\ndescription: Team notes\nglobs: docs/**\nalwaysApply: false\n---\nBe kind.\n"), 0644))

	out, _, err = runCLI(t, "--project-dir", root, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "core.mdc")
	assert.Contains(t, out, "always")
	assert.Contains(t, out, "apps/web/**")
	assert.Contains(t, out, "Team notes")
	assert.Contains(t, out, "TOTAL: 4 RULES")
	assert.Contains(t, out, "Last generated")
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rulegen dev")
}

func TestUnexpectedArgs(t *testing.T) {
	_, _, err := runCLI(t, "--project-dir", t.TempDir(), "generate", "extra")
	assert.Error(t, err)
}

func TestVerboseAndQuietAreExclusive(t *testing.T) {
	_, _, err := runCLI(t, "--project-dir", t.TempDir(), "detect", "-v", "-q")
	assert.Error(t, err)
}

func TestPreviewEntries(t *testing.T) {
	root := pnpmRepo(t)
	GlobalOpts.ProjectDir = root
	t.Cleanup(func() { GlobalOpts = GlobalOptions{} })

	p, err := loadProject(previewCmd)
	require.NoError(t, err)
	require.NoError(t, p.render())

	entries, err := previewEntries(p, false)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, string(rules.ActionCreate), e.Status, e.File.Path)
	}
	assert.NoDirExists(t, rulesDir(root), "preview does not write")

	_, err = p.writer(false, false).Write(string(p.detection.Manager), p.files)
	require.NoError(t, err)

	entries, err = previewEntries(p, false)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, string(rules.ActionUnchanged), e.Status, e.File.Path)
	}
}
