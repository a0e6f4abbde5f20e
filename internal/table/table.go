// Package table maintains the persisted candidate table: one ordered list of
// candidate renderings per ContentKey.
//
// Entries are created once, seeded with the literal itself, and from then on
// belong to the author. Synchronization only ever adds keys; it never edits,
// reorders or prunes an existing entry.
package table

import (
	"fmt"
	"maps"
	"sort"

	"git.home.luguber.info/inful/fittext/internal/contentkey"
	"git.home.luguber.info/inful/fittext/internal/literal"
	"git.home.luguber.info/inful/fittext/pkg/fit"
)

// FormatVersion is the current on-disk format version.
const FormatVersion = 1

// Variant selects the table section a call site belongs to.
type Variant string

const (
	VariantText  Variant = "text"
	VariantTitle Variant = "title"
)

// Entry is the author-maintained candidate list for one key.
type Entry struct {
	// Renderings are candidate templates in author order, never empty.
	Renderings []string `yaml:"renderings"`
	// Source is the seed the entry was created from.
	Source string `yaml:"source,omitempty"`
	// Origin is the call site that first introduced the key.
	Origin string `yaml:"origin,omitempty"`
}

// Table maps ContentKeys to entries, one section per macro variant.
type Table struct {
	Version int                             `yaml:"version"`
	Texts   map[contentkey.ContentKey]Entry `yaml:"texts"`
	Titles  map[contentkey.ContentKey]Entry `yaml:"titles"`
}

// New returns an empty table.
func New() Table {
	return Table{
		Version: FormatVersion,
		Texts:   map[contentkey.ContentKey]Entry{},
		Titles:  map[contentkey.ContentKey]Entry{},
	}
}

// Discovery is one call site found by the build.
type Discovery struct {
	Variant Variant
	Key     contentkey.ContentKey
	Seed    string
	Origin  literal.Position
}

func (t Table) section(v Variant) map[contentkey.ContentKey]Entry {
	if v == VariantTitle {
		return t.Titles
	}
	return t.Texts
}

// Lookup returns the entry for key in section v.
func (t Table) Lookup(v Variant, key contentkey.ContentKey) (Entry, bool) {
	e, ok := t.section(v)[key]
	return e, ok
}

// Len returns the number of entries across both sections.
func (t Table) Len() int {
	return len(t.Texts) + len(t.Titles)
}

// Synchronize ensures key exists in section v. A present key leaves the table
// unchanged whatever seed says; an absent key is inserted with seed as its
// sole rendering. t itself is never modified.
func Synchronize(t Table, v Variant, key contentkey.ContentKey, seed string) Table {
	out, _ := insert(t, v, key, Entry{Renderings: []string{seed}, Source: seed})
	return out
}

// SynchronizeAll merges a whole build's discoveries in one pass and returns
// the merged table plus the discoveries that introduced a new key. Repeated
// keys within the batch are no-ops after the first.
func SynchronizeAll(t Table, discoveries []Discovery) (Table, []Discovery) {
	var added []Discovery
	for _, d := range discoveries {
		var inserted bool
		t, inserted = insert(t, d.Variant, d.Key, Entry{
			Renderings: []string{d.Seed},
			Source:     d.Seed,
			Origin:     originString(d.Origin),
		})
		if inserted {
			added = append(added, d)
		}
	}
	return t, added
}

func insert(t Table, v Variant, key contentkey.ContentKey, e Entry) (Table, bool) {
	if _, exists := t.section(v)[key]; exists {
		return t, false
	}
	section := maps.Clone(t.section(v))
	if section == nil {
		section = map[contentkey.ContentKey]Entry{}
	}
	section[key] = e
	if t.Version == 0 {
		t.Version = FormatVersion
	}
	if v == VariantTitle {
		t.Titles = section
		if t.Texts == nil {
			t.Texts = map[contentkey.ContentKey]Entry{}
		}
	} else {
		t.Texts = section
		if t.Titles == nil {
			t.Titles = map[contentkey.ContentKey]Entry{}
		}
	}
	return t, true
}

func originString(p literal.Position) string {
	if p.File == "" {
		return ""
	}
	return p.String()
}

// StaleKey is an entry no call site of the current build references.
type StaleKey struct {
	Variant Variant
	Key     contentkey.ContentKey
}

// Stale lists entries not referenced by discoveries, sorted. They are
// reported, never removed.
func Stale(t Table, discoveries []Discovery) []StaleKey {
	seen := map[StaleKey]struct{}{}
	for _, d := range discoveries {
		seen[StaleKey{Variant: d.Variant, Key: d.Key}] = struct{}{}
	}
	var out []StaleKey
	for _, v := range []Variant{VariantText, VariantTitle} {
		for k := range t.section(v) {
			sk := StaleKey{Variant: v, Key: k}
			if _, ok := seen[sk]; !ok {
				out = append(out, sk)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Variant != out[j].Variant {
			return out[i].Variant < out[j].Variant
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Keys returns the keys of section v, sorted.
func (t Table) Keys(v Variant) []contentkey.ContentKey {
	keys := make([]contentkey.ContentKey, 0, len(t.section(v)))
	for k := range t.section(v) {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Catalog compiles the table into the runtime accessor.
func (t Table) Catalog() (*fit.Catalog, error) {
	texts, err := compileSection(t.Texts)
	if err != nil {
		return nil, fmt.Errorf("texts: %w", err)
	}
	titles, err := compileSection(t.Titles)
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}
	return fit.NewCatalogFromTemplates(texts, titles), nil
}

func compileSection(section map[contentkey.ContentKey]Entry) (map[string][]fit.Template, error) {
	out := make(map[string][]fit.Template, len(section))
	for k, e := range section {
		ts := make([]fit.Template, 0, len(e.Renderings))
		for _, r := range e.Renderings {
			tpl, err := fit.ParseTemplate(r)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", k.Short(), err)
			}
			ts = append(ts, tpl)
		}
		out[string(k)] = ts
	}
	return out, nil
}
