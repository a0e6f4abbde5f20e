package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is a source file selected for a build.
type File struct {
	// Path is the file path as the walk found it (root joined with Rel).
	Path string
	// Root is the source root the file was found under.
	Root string
	// Rel is the slash-separated path relative to Root.
	Rel string
}

// Discover walks roots and returns the files f includes, sorted by Path.
// Hidden directories are skipped, as are paths skip reports true for (the
// generator's own outputs).
func Discover(ctx context.Context, roots []string, f *Filter, skip func(path string) bool) ([]File, error) {
	seen := map[string]bool{}
	var files []File
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("source root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source root %s is not a directory", root)
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if skip != nil && skip(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if ok, _ := f.Include(rel); !ok || seen[path] {
				return nil
			}
			seen[path] = true
			files = append(files, File{Path: path, Root: root, Rel: rel})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
