package config

import (
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"
	"time"
)

// Validate checks a defaulted configuration and reports every problem found.
func Validate(cfg *Config) error {
	var errs []error
	for _, r := range cfg.Sources.Roots {
		if strings.TrimSpace(r) == "" {
			errs = append(errs, errors.New("sources.roots: empty root"))
		}
	}

	c := cfg.Container
	for field, name := range map[string]string{
		"container.name":           c.Name,
		"container.text_accessor":  c.TextAccessor,
		"container.title_accessor": c.TitleAccessor,
	} {
		if !isIdentifier(name) {
			errs = append(errs, fmt.Errorf("%s: %q is not a valid identifier", field, name))
		}
	}
	if c.TextAccessor == c.TitleAccessor {
		errs = append(errs, fmt.Errorf("container: text and title accessors must differ (both %q)", c.TextAccessor))
	}
	switch c.Language {
	case LanguageSwift:
	case LanguageGo:
		if !token.IsIdentifier(c.Package) {
			errs = append(errs, fmt.Errorf("container.package: %q is not a valid Go package name", c.Package))
		}
		for _, a := range []string{c.TextAccessor, c.TitleAccessor} {
			if goExported(a) == c.Name {
				errs = append(errs, fmt.Errorf("container: Go accessor %s collides with container.name %q", goExported(a), c.Name))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("container.language: unsupported %q (expected swift or go)", c.Language))
	}

	if filepath.Clean(cfg.Table.Path) == filepath.Clean(c.Output) {
		errs = append(errs, errors.New("table.path and container.output must differ"))
	}
	if cfg.Output.Clean {
		errs = append(errs, validateCleanOutput(cfg)...)
	}
	if d, err := time.ParseDuration(cfg.Watch.Debounce); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: invalid duration %q", cfg.Watch.Debounce))
	}
	if cfg.Metrics.Listen != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path: must start with '/' (got %q)", cfg.Metrics.Path))
	}
	return errors.Join(errs...)
}

// validateCleanOutput refuses a pruned output directory that holds project
// files, since pruning deletes everything the run did not write.
func validateCleanOutput(cfg *Config) []error {
	out := filepath.Clean(cfg.Output.Directory)
	if out == "." || out == string(filepath.Separator) {
		return []error{fmt.Errorf("output.directory: %q cannot be cleaned", cfg.Output.Directory)}
	}
	var errs []error
	paths := append([]string{cfg.Table.Path, cfg.Container.Output}, cfg.Sources.Roots...)
	for _, p := range paths {
		if within(out, filepath.Clean(p)) {
			errs = append(errs, fmt.Errorf("output.clean: %q lies inside output.directory %q", p, cfg.Output.Directory))
		}
	}
	return errs
}

// within reports whether p is dir or below it.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func goExported(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
