// Package fsutil holds the file writes shared by the table store and the
// generator.
package fsutil

import (
	"bytes"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes to a temp file in the target directory and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Unchanged reports whether path already holds exactly data.
func Unchanged(path string, data []byte) bool {
	// #nosec G304 - callers pass configured project paths
	existing, err := os.ReadFile(path)
	return err == nil && bytes.Equal(existing, data)
}

// WriteIfChanged creates parent directories and atomically writes data
// unless path already holds it. It reports whether a write happened.
func WriteIfChanged(path string, data []byte) (bool, error) {
	if Unchanged(path, data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, err
	}
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
