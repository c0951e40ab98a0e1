package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohare93/rulegen/internal/pkgmanager"
	"github.com/ohare93/rulegen/internal/rules"
)

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, rules.DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultWatchDebounce, cfg.Watch.Debounce)
	assert.False(t, cfg.IncludeRoot)
	assert.Empty(t, cfg.Conventions)

	m, err := cfg.Manager()
	require.NoError(t, err)
	assert.Equal(t, pkgmanager.Manager(""), m)
}

func TestLoad_ProjectFile(t *testing.T) {
	root := t.TempDir()
	content := `output_dir: rules
package_manager: yarn
project_name: Acme
include_root: true
conventions:
  - Use conventional commits.
  - Prefer named exports.
log:
  level: debug
  format: json
watch:
  debounce: 1s
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644))

	cfg, err := Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, "rules", cfg.OutputDir)
	assert.Equal(t, filepath.Join(root, "rules"), cfg.OutputPath(root))
	assert.Equal(t, "Acme", cfg.ProjectName)
	assert.True(t, cfg.IncludeRoot)
	assert.Equal(t, []string{"Use conventional commits.", "Prefer named exports."}, cfg.Conventions)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)

	m, err := cfg.Manager()
	require.NoError(t, err)
	assert.Equal(t, pkgmanager.Yarn, m)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RULEGEN_PACKAGE_MANAGER", "bun")
	t.Setenv("RULEGEN_LOG_LEVEL", "warn")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "bun", cfg.PackageManager)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"manager", "package_manager: maven\n", pkgmanager.ErrUnknownManager},
		{"log level", "log:\n  level: loud\n", ErrInvalidLogLevel},
		{"log format", "log:\n  format: xml\n", ErrInvalidLogFormat},
		{"debounce", "watch:\n  debounce: 0s\n", ErrInvalidDebounce},
		{"output dir", "output_dir: ' '\n", ErrEmptyOutputDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, "custom.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(root, path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOutputPath_Absolute(t *testing.T) {
	cfg := Default()
	cfg.OutputDir = "/tmp/rules"
	assert.Equal(t, "/tmp/rules", cfg.OutputPath("/repo"))
}
