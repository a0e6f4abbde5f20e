package rewrite

import (
	"strings"

	"git.home.luguber.info/inful/fittext/internal/contentkey"
	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/literal"
)

// Default accessor names, matching the generated companion source.
const (
	DefaultContainer     = "AccessibleTextContainer"
	DefaultTextAccessor  = "texts"
	DefaultTitleAccessor = "navigationTitles"
	DefaultPackage       = "accessibletext"
	KeyLabel             = "key"
	ContentLabel         = "content"
)

// Style selects the host call syntax of the emitted accessor call.
type Style string

const (
	// StyleSwift emits Container.accessor(key: "<key>", args..., content: { ... }).
	StyleSwift Style = "swift"
	// StyleGo emits pkg.Accessor("<key>", func() { ... }, args...), matching
	// the generated Go package.
	StyleGo Style = "go"
)

// ContentBlock is the content argument of the title macro.
type ContentBlock struct {
	Source string
	At     literal.Position
}

// Rewriter emits accessor calls. The zero value uses the default names and
// the Swift style.
type Rewriter struct {
	Container     string
	TextAccessor  string
	TitleAccessor string
	Style         Style
	// Package qualifies the accessor in the Go style.
	Package string
}

// Result is a rewritten call site.
type Result struct {
	Key  contentkey.ContentKey
	Expr Expression
}

// Text rewrites the text macro into
// Container.TextAccessor(key: "<key>", interp1, interp2, ...).
// All-fixed, all-interpolated and empty literals are accepted.
func (r Rewriter) Text(lit literal.SegmentedLiteral) Result {
	key := contentkey.Hash(lit.FixedText())
	return Result{
		Key:  key,
		Expr: r.call(r.textAccessor(), key, lit, nil),
	}
}

// Title rewrites the navigation title macro. The content block is forwarded
// as a trailing `content:` argument; a nil block fails with
// errors.ErrMissingContentArgument.
func (r Rewriter) Title(lit literal.SegmentedLiteral, content *ContentBlock) (Result, error) {
	if content == nil {
		return Result{}, errors.MacroError(errors.ErrMissingContentArgument,
			"accessibleNavigationTitle requires a content block as the second argument").Build()
	}
	key := contentkey.Hash(lit.FixedText())
	return Result{
		Key:  key,
		Expr: r.call(r.titleAccessor(), key, lit, content),
	}, nil
}

func (r Rewriter) call(accessor string, key contentkey.ContentKey, lit literal.SegmentedLiteral, content *ContentBlock) Call {
	interps := lit.Interpolations()
	args := make([]Argument, 0, len(interps)+2)
	if r.Style == StyleGo {
		args = append(args, Argument{Value: StringLit{Value: string(key)}})
		if content != nil {
			args = append(args, Argument{Value: Closure{Source: "func() " + content.Source}})
		}
		for _, e := range interps {
			args = append(args, Argument{Value: Raw{Source: e.Source}})
		}
		return Call{
			Callee: Member{Base: Ident{Name: r.pkg()}, Name: Exported(accessor)},
			Args:   args,
		}
	}

	args = append(args, Argument{Label: KeyLabel, Value: StringLit{Value: string(key)}})
	for _, e := range interps {
		args = append(args, Argument{Value: Raw{Source: e.Source}})
	}
	if content != nil {
		args = append(args, Argument{Label: ContentLabel, Value: Closure{Source: content.Source}})
	}
	return Call{
		Callee: Member{Base: Ident{Name: r.container()}, Name: accessor},
		Args:   args,
	}
}

// Exported upper-cases the first letter of an accessor name, giving the Go
// function name generated for it.
func Exported(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (r Rewriter) pkg() string {
	if r.Package == "" {
		return DefaultPackage
	}
	return r.Package
}

func (r Rewriter) container() string {
	if r.Container == "" {
		return DefaultContainer
	}
	return r.Container
}

func (r Rewriter) textAccessor() string {
	if r.TextAccessor == "" {
		return DefaultTextAccessor
	}
	return r.TextAccessor
}

func (r Rewriter) titleAccessor() string {
	if r.TitleAccessor == "" {
		return DefaultTitleAccessor
	}
	return r.TitleAccessor
}
