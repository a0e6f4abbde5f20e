package source

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter decides whether a source file, named by its slash-separated path
// relative to a source root, takes part in a build.
type Filter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// NewFilter constructs a Filter from glob patterns. `*` and `?` stay within a
// path segment, `**` spans segments. Empty include slice means include all
// (unless excluded).
func NewFilter(includeGlobs, excludeGlobs []string) (*Filter, error) {
	compile := func(globs []string) ([]*regexp.Regexp, error) {
		out := make([]*regexp.Regexp, 0, len(globs))
		for _, g := range globs {
			if strings.TrimSpace(g) == "" {
				continue
			}
			r, err := regexp.Compile(globToRegex(g))
			if err != nil {
				return nil, fmt.Errorf("compile glob %s: %w", g, err)
			}
			out = append(out, r)
		}
		return out, nil
	}
	incs, err := compile(includeGlobs)
	if err != nil {
		return nil, err
	}
	excs, err := compile(excludeGlobs)
	if err != nil {
		return nil, err
	}
	return &Filter{include: incs, exclude: excs}, nil
}

// Include returns true if rel passes the filter along with an exclusion reason if false.
func (f *Filter) Include(rel string) (bool, string) {
	if f == nil {
		return true, ""
	}
	for _, rx := range f.exclude {
		if rx.MatchString(rel) {
			return false, "excluded_by_pattern"
		}
	}
	if len(f.include) == 0 {
		return true, ""
	}
	for _, rx := range f.include {
		if rx.MatchString(rel) {
			return true, ""
		}
	}
	return false, "not_in_includes"
}

// globToRegex converts a path glob to an anchored regex string.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				i++
				if i+1 < len(glob) && glob[i+1] == '/' {
					i++
					b.WriteString("(?:.*/)?")
				} else {
					b.WriteString(".*")
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '{', '}', '[', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString("$")
	return b.String()
}
