// Package config loads rulegen settings from .rulegen.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ohare93/rulegen/internal/pkgmanager"
	"github.com/ohare93/rulegen/internal/rules"
)

// FileName is the project-level config file looked up in the repository root.
const FileName = ".rulegen.yaml"

// EnvPrefix prefixes environment overrides, e.g. RULEGEN_OUTPUT_DIR.
const EnvPrefix = "RULEGEN"

// Default values.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultWatchDebounce = 300 * time.Millisecond
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidDebounce  = errors.New("watch debounce must be positive")
	ErrEmptyOutputDir   = errors.New("output_dir must not be empty")
)

// Config holds all rulegen settings.
type Config struct {
	OutputDir      string      `mapstructure:"output_dir"`
	PackageManager string      `mapstructure:"package_manager"`
	ProjectName    string      `mapstructure:"project_name"`
	Conventions    []string    `mapstructure:"conventions"`
	IncludeRoot    bool        `mapstructure:"include_root"`
	Log            LogConfig   `mapstructure:"log"`
	Watch          WatchConfig `mapstructure:"watch"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Manager returns the configured package manager override, or "" if unset.
func (c *Config) Manager() (pkgmanager.Manager, error) {
	return pkgmanager.Parse(c.PackageManager)
}

// OutputPath resolves OutputDir against the repository root.
func (c *Config) OutputPath(root string) string {
	if filepath.IsAbs(c.OutputDir) {
		return c.OutputDir
	}
	return filepath.Join(root, filepath.FromSlash(c.OutputDir))
}

// Default returns the configuration used when no file or env override exists.
func Default() *Config {
	return &Config{
		OutputDir: rules.DefaultOutputDir,
		Log:       LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Watch:     WatchConfig{Debounce: DefaultWatchDebounce},
	}
}

// Load reads configuration for the repository at root.
// configPath, when non-empty, must point to an existing file; otherwise
// .rulegen.yaml in root is used if present.
func Load(root, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		candidate := filepath.Join(root, FileName)
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("package_manager", "")
	v.SetDefault("project_name", "")
	v.SetDefault("conventions", []string{})
	v.SetDefault("include_root", false)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("watch.debounce", d.Watch.Debounce.String())
}

// Validate checks field values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrEmptyOutputDir
	}
	if _, err := c.Manager(); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDebounce, c.Watch.Debounce)
	}
	return nil
}
