package config

import (
	"runtime"
	"time"
)

const (
	defaultContainer     = "AccessibleTextContainer"
	defaultTextAccessor  = "texts"
	defaultTitleAccessor = "navigationTitles"
	defaultTablePath     = "accessible-text.yaml"
	defaultOutputDir     = ".fittext/out"
	defaultGoPackage     = "accessibletext"
	defaultMetricsPath   = "/metrics"
	defaultDebounce      = 300 * time.Millisecond
)

// applyDefaults fills every unset field.
func applyDefaults(cfg *Config) {
	if len(cfg.Sources.Roots) == 0 {
		cfg.Sources.Roots = []string{"."}
	}
	if cfg.Table.Path == "" {
		cfg.Table.Path = defaultTablePath
	}

	c := &cfg.Container
	if c.Name == "" {
		c.Name = defaultContainer
	}
	if c.TextAccessor == "" {
		c.TextAccessor = defaultTextAccessor
	}
	if c.TitleAccessor == "" {
		c.TitleAccessor = defaultTitleAccessor
	}
	if c.Language == "" {
		c.Language = LanguageSwift
	}
	if c.Output == "" {
		if c.Language == LanguageGo {
			c.Output = "accessibletext/accessibletext.go"
		} else {
			c.Output = "Generated/" + c.Name + ".swift"
		}
	}
	if c.Language == LanguageGo && c.Package == "" {
		c.Package = defaultGoPackage
	}
	if len(cfg.Sources.Include) == 0 {
		if c.Language == LanguageGo {
			cfg.Sources.Include = []string{"**/*.go"}
		} else {
			cfg.Sources.Include = []string{"**/*.swift"}
		}
	}

	if cfg.Output.Directory == "" {
		cfg.Output.Directory = defaultOutputDir
	}
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = runtime.NumCPU()
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce.String()
	}
	if cfg.Metrics.Listen != "" && cfg.Metrics.Path == "" {
		cfg.Metrics.Path = defaultMetricsPath
	}
}
