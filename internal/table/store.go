package table

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/fsutil"
	"git.home.luguber.info/inful/fittext/internal/logfields"
	"git.home.luguber.info/inful/fittext/internal/retry"
)

const header = "# Candidate renderings per content key, generated by fittext.\n" +
	"# New keys are appended on build; existing entries are never rewritten.\n" +
	"# Edit, add or reorder renderings freely. {N} is the N-th interpolation, {{ and }} are literal braces.\n"

// Store persists a Table as YAML. All writers of one file serialize on an
// in-process mutex and an exclusive lock file next to it.
type Store struct {
	path      string
	mu        sync.Mutex
	backoff   retry.Policy
	staleLock time.Duration
}

// NewStore returns a Store for the table file at path.
func NewStore(path string) *Store {
	return &Store{
		path:      path,
		backoff:   retry.DefaultPolicy(),
		staleLock: 10 * time.Minute,
	}
}

// Path returns the table file path.
func (s *Store) Path() string { return s.path }

// Load reads the table. A missing or empty file is an empty table. Anything
// unparseable fails with errors.ErrMalformedExistingTable.
func (s *Store) Load(_ context.Context) (Table, error) {
	// #nosec G304 - path comes from the project configuration
	data, err := os.ReadFile(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return Table{}, errors.WrapError(err, errors.CategoryFileSystem, "read candidate table").
			WithContext("path", s.path).Build()
	}
	return Decode(data, s.path)
}

// Decode parses table YAML. name is used in error context only.
func Decode(data []byte, name string) (Table, error) {
	if blank(data) {
		return New(), nil
	}

	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if stderrors.Is(err, io.EOF) {
			return New(), nil
		}
		return Table{}, errors.TableError("cannot parse candidate table").
			WithCause(err).WithContext("path", name).Build()
	}
	if err := Validate(t); err != nil {
		return Table{}, errors.TableError("invalid candidate table").
			WithCause(err).WithContext("path", name).Build()
	}
	if t.Texts == nil {
		t.Texts = New().Texts
	}
	if t.Titles == nil {
		t.Titles = New().Titles
	}
	return t, nil
}

// blank reports whether data holds nothing but whitespace and comments.
func blank(data []byte) bool {
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 && line[0] != '#' {
			return false
		}
	}
	return true
}

// Encode renders t as YAML with the explanatory header. Map keys are sorted,
// so the output is stable for unchanged tables.
func Encode(t Table) ([]byte, error) {
	if t.Version == 0 {
		t.Version = FormatVersion
	}
	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode candidate table: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode candidate table: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes t atomically. It reports whether the file content changed;
// an identical file is left untouched.
func (s *Store) Save(ctx context.Context, t Table) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.save(t)
}

// Update runs load, fn and save under the store lock. fn receives the
// current table; if loading fails fn is not called and nothing is written.
func (s *Store) Update(ctx context.Context, fn func(Table) (Table, error)) (Table, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(ctx)
	if err != nil {
		return Table{}, false, err
	}
	defer unlock()

	current, err := s.Load(ctx)
	if err != nil {
		return Table{}, false, err
	}
	next, err := fn(current)
	if err != nil {
		return current, false, err
	}
	changed, err := s.save(next)
	if err != nil {
		return current, false, err
	}
	return next, changed, nil
}

func (s *Store) save(t Table) (bool, error) {
	data, err := Encode(t)
	if err != nil {
		return false, errors.InternalError("encode candidate table").WithCause(err).Build()
	}

	changed, err := fsutil.WriteIfChanged(s.path, data)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "write candidate table").
			WithContext("path", s.path).Build()
	}
	return changed, nil
}

// lock acquires the lock file, backing off until the retry budget is spent
// or ctx is done. A lock older than
// staleLock is assumed abandoned by a crashed build and removed.
func (s *Store) lock(ctx context.Context) (func(), error) {
	lockPath := s.path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create table directory").
			WithContext("path", s.path).Build()
	}
	for attempt := 1; ; attempt++ {
		// #nosec G304 - derived from the configured table path
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return func() {
				if rmErr := os.Remove(lockPath); rmErr != nil && !stderrors.Is(rmErr, fs.ErrNotExist) {
					slog.Warn("Failed to release table lock", slog.String("path", lockPath), logfields.Error(rmErr))
				}
			}, nil
		}
		if !stderrors.Is(err, fs.ErrExist) {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "acquire table lock").
				WithContext("path", lockPath).Build()
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > s.staleLock {
			slog.Warn("Removing stale table lock", slog.String("path", lockPath))
			_ = os.Remove(lockPath)
			continue
		}

		if s.backoff.Exhausted(attempt) {
			return nil, errors.FileSystemError("table is locked by another build").
				WithContext("path", lockPath).
				WithContext("attempts", attempt).
				UserAction().Build()
		}
		if waitErr := s.backoff.Wait(ctx, attempt); waitErr != nil {
			return nil, errors.WrapError(waitErr, errors.CategoryFileSystem, "table is locked by another build").
				WithContext("path", lockPath).Build()
		}
	}
}
