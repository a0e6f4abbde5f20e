// Package watch re-runs a build when source files or the candidate table change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/fittext/internal/logfields"
	"git.home.luguber.info/inful/fittext/internal/source"
)

// Config describes what to watch.
type Config struct {
	// Roots are watched recursively.
	Roots []string
	// Filter selects relevant files below a root.
	Filter *source.Filter
	// Table is watched so author edits regenerate the companion source.
	Table string
	// Ignore lists files and directories the build itself writes.
	Ignore []string
	// Debounce is the quiet window before a rebuild.
	Debounce time.Duration
}

// Watcher runs onChange once per burst of relevant file system events.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	onChange func(ctx context.Context) error
	ignore   map[string]bool
	table    string
	logger   *slog.Logger
}

// New creates a Watcher and registers every directory below the roots.
func New(cfg Config, onChange func(ctx context.Context) error) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		onChange: onChange,
		ignore:   map[string]bool{},
		logger:   slog.Default().With(logfields.Stage("watch")),
	}
	for _, p := range cfg.Ignore {
		w.ignore[abs(p)] = true
	}
	for _, root := range cfg.Roots {
		if err := w.addTree(abs(root)); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	if cfg.Table != "" {
		w.table = abs(cfg.Table)
		// The directory is watched since editors replace files by rename.
		if err := fsw.Add(filepath.Dir(w.table)); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch table directory %s: %w", filepath.Dir(w.table), err)
		}
	}
	return w, nil
}

// Run processes events until ctx is done, then closes the watcher. Build
// failures are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	w.logger.Info("Watching for changes", slog.Int("roots", len(w.cfg.Roots)), slog.Duration("debounce", w.cfg.Debounce))
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			timer.Reset(w.cfg.Debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", logfields.Error(err))
		case <-timer.C:
			if err := w.onChange(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// relevant reports whether event should trigger a rebuild. New directories
// below a root are registered on the way.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := abs(event.Name)
	if name == w.table {
		return true
	}
	if strings.HasPrefix(filepath.Base(name), ".") || w.ignored(name) {
		return false
	}
	rel, ok := w.under(name)
	if !ok {
		return false
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := w.addTree(name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(name), logfields.Error(err))
			}
			return true
		}
	}
	include, _ := w.cfg.Filter.Include(rel)
	return include
}

func (w *Watcher) ignored(name string) bool {
	for p := range w.ignore {
		if name == p || strings.HasPrefix(name, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// under returns name's slash-separated path relative to the root containing it.
func (w *Watcher) under(name string) (string, bool) {
	for _, r := range w.cfg.Roots {
		root := abs(r)
		rel, err := filepath.Rel(root, name)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

// addTree registers dir and every non-hidden, non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (strings.HasPrefix(d.Name(), ".") || w.ignored(abs(path))) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func abs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}
