// Package codegen regenerates the companion accessor source from the
// candidate table. The output is a pure function of the table and Options:
// keys are emitted sorted and nothing run-specific is embedded.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/rewrite"
	"git.home.luguber.info/inful/fittext/internal/table"
	"git.home.luguber.info/inful/fittext/pkg/fit"
)

// Language selects the output flavor.
type Language string

const (
	Swift Language = "swift"
	Go    Language = "go"
)

// Options names the generated accessor.
type Options struct {
	Language      Language
	Container     string
	TextAccessor  string
	TitleAccessor string
	// Package is the Go package name (Go only).
	Package string
	// TableName is mentioned in the generated header.
	TableName string
}

type entryData struct {
	Key        string
	Renderings []string // already converted to host literals
}

type fileData struct {
	Options
	Texts  []entryData
	Titles []entryData
}

var templates = parseTemplates()

func parseTemplates() *template.Template {
	funcs := template.FuncMap{"exported": rewrite.Exported}
	t := template.Must(template.New("swift").Funcs(funcs).Parse(swiftTemplate))
	template.Must(t.New("go").Funcs(funcs).Parse(goTemplate))
	return t
}

// Generate renders the companion source for t.
func Generate(t table.Table, opts Options) ([]byte, error) {
	opts = withDefaults(opts)

	var literal func(fit.Template) string
	switch opts.Language {
	case Swift:
		literal = swiftLiteral
	case Go:
		literal = goLiteral
	default:
		return nil, errors.CodegenError(fmt.Sprintf("unsupported language %q", opts.Language)).Build()
	}

	texts, err := section(t, table.VariantText, literal)
	if err != nil {
		return nil, err
	}
	titles, err := section(t, table.VariantTitle, literal)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	data := fileData{Options: opts, Texts: texts, Titles: titles}
	if err := templates.ExecuteTemplate(&buf, string(opts.Language), data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryCodegen, "render companion source").Build()
	}
	if opts.Language != Go {
		return buf.Bytes(), nil
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCodegen, "format generated Go source").Build()
	}
	return out, nil
}

func withDefaults(o Options) Options {
	if o.Language == "" {
		o.Language = Swift
	}
	if o.Container == "" {
		o.Container = rewrite.DefaultContainer
	}
	if o.TextAccessor == "" {
		o.TextAccessor = rewrite.DefaultTextAccessor
	}
	if o.TitleAccessor == "" {
		o.TitleAccessor = rewrite.DefaultTitleAccessor
	}
	if o.Package == "" {
		o.Package = rewrite.DefaultPackage
	}
	if o.TableName == "" {
		o.TableName = "the candidate table"
	}
	return o
}

func section(t table.Table, v table.Variant, literal func(fit.Template) string) ([]entryData, error) {
	keys := t.Keys(v)
	out := make([]entryData, 0, len(keys))
	for _, k := range keys {
		e, _ := t.Lookup(v, k)
		lits := make([]string, 0, len(e.Renderings))
		for _, r := range e.Renderings {
			tpl, err := fit.ParseTemplate(r)
			if err != nil {
				return nil, errors.TableError(fmt.Sprintf("%s %s: %v", v, k.Short(), err)).
					WithContext("content_key", string(k)).Build()
			}
			lits = append(lits, literal(tpl))
		}
		out = append(out, entryData{Key: string(k), Renderings: lits})
	}
	return out, nil
}

// swiftLiteral converts a template into a String(format:) literal:
// `{N}` becomes `%N$@` and a literal `%` is doubled.
func swiftLiteral(t fit.Template) string {
	var b strings.Builder
	t.Walk(func(text string) {
		b.WriteString(strings.ReplaceAll(text, "%", "%%"))
	}, func(n int) {
		b.WriteString("%" + strconv.Itoa(n) + "$@")
	})
	return rewrite.Quote(b.String())
}

// goLiteral keeps the template source; the runtime catalog parses it.
func goLiteral(t fit.Template) string {
	return strconv.Quote(t.Source())
}
