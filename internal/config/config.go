// Package config loads and validates fittext.yaml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/fsutil"
)

// Version is the only configuration format version understood.
const Version = "1"

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "fittext.yaml"

// Config is the fittext configuration file.
type Config struct {
	Version   string          `yaml:"version"`
	Sources   SourcesConfig   `yaml:"sources"`
	Table     TableConfig     `yaml:"table"`
	Container ContainerConfig `yaml:"container"`
	Output    OutputConfig    `yaml:"output"`
	Build     BuildConfig     `yaml:"build,omitempty"`
	Watch     WatchConfig     `yaml:"watch,omitempty"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`

	// dir is the directory of the loaded file; relative paths resolve against it.
	dir string
}

// SourcesConfig selects the files scanned for macro invocations.
type SourcesConfig struct {
	Roots   []string `yaml:"roots"`   // Directories to walk
	Include []string `yaml:"include"` // Globs relative to a root; empty means all
	Exclude []string `yaml:"exclude"` // Globs relative to a root, checked first
}

// TableConfig locates the persisted candidate table.
type TableConfig struct {
	Path string `yaml:"path"`
}

// Language selects the companion accessor source flavor.
type Language string

const (
	LanguageSwift Language = "swift"
	LanguageGo    Language = "go"
)

// ContainerConfig names the generated accessor and where it is written.
type ContainerConfig struct {
	Name          string   `yaml:"name"`
	TextAccessor  string   `yaml:"text_accessor"`
	TitleAccessor string   `yaml:"title_accessor"`
	Language      Language `yaml:"language"`
	Output        string   `yaml:"output"`
	Package       string   `yaml:"package,omitempty"` // Go package name (language: go)
}

// OutputConfig controls where rewritten sources are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean,omitempty"` // Remove outputs the current run did not produce
}

// BuildConfig tunes the generator.
type BuildConfig struct {
	Workers int `yaml:"workers,omitempty"` // Parallel expansion workers; 0 means one per CPU
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"` // Duration string, e.g. 300ms
}

// DebounceDuration parses Debounce, falling back to the default.
func (w WatchConfig) DebounceDuration() time.Duration {
	if d, err := time.ParseDuration(w.Debounce); err == nil && d > 0 {
		return d
	}
	return defaultDebounce
}

// MetricsConfig enables the Prometheus endpoint in watch mode.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"` // host:port; empty disables
	Path   string `yaml:"path,omitempty"`
}

// Load reads the configuration at path. Variables from .env files are loaded
// first and ${VAR} references expanded; the process environment wins.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(filepath.Dir(path)); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "load .env").Fatal().Build()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", path)).
				WithContext("path", path).
				WithCause(err).
				UserAction().
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read configuration").
			WithContext("path", path).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve configuration directory").Build()
	}
	cfg.dir = abs
	return cfg, nil
}

// Parse decodes, defaults and validates configuration bytes. Paths stay
// relative to the working directory.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
			UserAction().Build()
	}
	if cfg.Version != Version {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %q)", cfg.Version, Version)).
			UserAction().Build()
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "configuration validation failed").
			Fatal().UserAction().Build()
	}
	return &cfg, nil
}

// Resolve returns p relative to the configuration file's directory, or p
// unchanged when it is absolute or the config was not loaded from a file.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// SourceRoots returns the resolved source roots.
func (c *Config) SourceRoots() []string {
	roots := make([]string, len(c.Sources.Roots))
	for i, r := range c.Sources.Roots {
		roots[i] = c.Resolve(r)
	}
	return roots
}

// TablePath returns the resolved table path.
func (c *Config) TablePath() string { return c.Resolve(c.Table.Path) }

// ContainerOutputPath returns the resolved companion source path.
func (c *Config) ContainerOutputPath() string { return c.Resolve(c.Container.Output) }

// OutputDirectory returns the resolved rewritten-source directory.
func (c *Config) OutputDirectory() string { return c.Resolve(c.Output.Directory) }

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			UserAction().
			Build()
	}

	example := Example()
	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example configuration").Build()
	}
	header := []byte("# fittext configuration\n# Paths are relative to this file. ${VAR} references are expanded from the environment and .env files.\n")
	if err := fsutil.WriteFileAtomic(configPath, append(header, data...), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", configPath).Build()
	}
	return nil
}

// Example returns the configuration Init writes.
func Example() Config {
	return Config{
		Version: Version,
		Sources: SourcesConfig{
			Roots:   []string{"Sources"},
			Include: []string{"**/*.swift"},
			Exclude: []string{"**/Generated/**"},
		},
		Table: TableConfig{Path: "accessible-text.yaml"},
		Container: ContainerConfig{
			Name:          defaultContainer,
			TextAccessor:  defaultTextAccessor,
			TitleAccessor: defaultTitleAccessor,
			Language:      LanguageSwift,
			Output:        "Sources/Generated/AccessibleTextContainer.swift",
		},
		Output: OutputConfig{Directory: ".fittext/out"},
		Build:  BuildConfig{Workers: 4},
		Watch:  WatchConfig{Debounce: "300ms"},
	}
}
