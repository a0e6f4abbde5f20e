package fit

import "sort"

// Catalog is the read-only accessor over a generated candidate table.
// Keys are ContentKeys in their hex spelling.
type Catalog struct {
	texts  map[string][]Template
	titles map[string][]Template
}

// NewCatalog builds a Catalog from raw template sources. It panics on an
// invalid template; generated code only contains validated ones.
func NewCatalog(texts, titles map[string][]string) *Catalog {
	return &Catalog{texts: compile(texts), titles: compile(titles)}
}

// NewCatalogFromTemplates builds a Catalog from parsed templates.
func NewCatalogFromTemplates(texts, titles map[string][]Template) *Catalog {
	return &Catalog{texts: texts, titles: titles}
}

func compile(src map[string][]string) map[string][]Template {
	out := make(map[string][]Template, len(src))
	for k, list := range src {
		ts := make([]Template, len(list))
		for i, s := range list {
			ts[i] = MustParseTemplate(s)
		}
		out[k] = ts
	}
	return out
}

// Texts returns the rendered text candidates for key, in author order.
func (c *Catalog) Texts(key string, args ...any) []string {
	return render(c.texts[key], args)
}

// Titles returns the rendered navigation title candidates for key.
func (c *Catalog) Titles(key string, args ...any) []string {
	return render(c.titles[key], args)
}

// FitText renders the text candidates for key and returns the first that fits cons.
func (c *Catalog) FitText(key string, cons Constraints, args ...any) string {
	return Select(c.Texts(key, args...), WidthFits(cons))
}

// FitTitle renders the title candidates for key and returns the first that fits cons.
func (c *Catalog) FitTitle(key string, cons Constraints, args ...any) string {
	return Select(c.Titles(key, args...), WidthFits(cons))
}

// Keys returns all text and title keys, sorted.
func (c *Catalog) Keys() []string {
	seen := make(map[string]struct{}, len(c.texts)+len(c.titles))
	for k := range c.texts {
		seen[k] = struct{}{}
	}
	for k := range c.titles {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func render(ts []Template, args []any) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Render(args...)
	}
	return out
}
