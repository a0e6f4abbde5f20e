package source

import (
	"bytes"
	stderrors "errors"
	"strings"

	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/literal"
	"git.home.luguber.info/inful/fittext/internal/rewrite"
	"git.home.luguber.info/inful/fittext/internal/table"
)

// Macro names recognized in source files.
const (
	TextMacro  = "#accessibleText"
	TitleMacro = "#accessibleNavigationTitle"
)

// Result is the expansion of one source file.
type Result struct {
	// Output is the source with every macro invocation replaced.
	Output []byte
	// Discoveries lists the call sites in source order.
	Discoveries []table.Discovery
}

// Changed reports whether any call site was rewritten.
func (r Result) Changed() bool { return len(r.Discoveries) > 0 }

// HasMacros is a cheap pre-filter for files that cannot contain invocations.
func HasMacros(src []byte) bool {
	return bytes.Contains(src, []byte(TextMacro)) || bytes.Contains(src, []byte(TitleMacro))
}

// Expand rewrites every macro invocation in src. All diagnostics of the file
// are returned joined; when there is any, the Result carries no discoveries
// so nothing reaches the candidate table.
func Expand(file string, src []byte, rw rewrite.Rewriter) (Result, error) {
	x := &expander{src: src, pos: newPositions(file, src), rw: rw}
	out := x.expand(0, len(src))
	if len(x.diags) > 0 {
		return Result{}, stderrors.Join(x.diags...)
	}
	return Result{Output: []byte(out), Discoveries: x.discoveries}, nil
}

type expander struct {
	src         []byte
	pos         *positions
	rw          rewrite.Rewriter
	discoveries []table.Discovery
	diags       []error
}

type argument struct {
	label      string
	start, end int // trimmed expression span
}

// expand returns src[start:end] with macro invocations replaced.
func (x *expander) expand(start, end int) string {
	var b strings.Builder
	i := start
	for i < end {
		c := x.src[i]
		switch {
		case c == '/' && i+1 < end && (x.src[i+1] == '/' || x.src[i+1] == '*'):
			next, err := skipComment(x.src[:end], i)
			if err != nil {
				x.fail(i, err)
			}
			b.Write(x.src[i:next])
			i = next
			continue
		case c == '#':
			if replacement, next, ok := x.invocation(i, end); ok {
				b.WriteString(replacement)
				i = next
				continue
			}
		}
		if isQuote(c) {
			if next, ok, err := skipLiteral(x.src[:end], i); ok {
				if err != nil {
					x.fail(i, err)
				}
				b.Write(x.src[i:next])
				i = next
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// invocation tries to parse a macro invocation at i. ok is false when the
// text is not an invocation at all (e.g. a mention without parentheses).
func (x *expander) invocation(i, end int) (string, int, bool) {
	var macro string
	for _, name := range []string{TitleMacro, TextMacro} {
		if bytes.HasPrefix(x.src[i:end], []byte(name)) {
			macro = name
			break
		}
	}
	if macro == "" {
		return "", 0, false
	}
	after := i + len(macro)
	if after < end && isIdentByte(x.src[after]) {
		return "", 0, false
	}
	open := skipSpace(x.src[:end], after)
	if open >= end || x.src[open] != '(' {
		return "", 0, false
	}

	closeEnd, err := skipBalanced(x.src[:end], open, '(', ')')
	if err != nil {
		x.fail(i, err)
		return string(x.src[i:closeEnd]), closeEnd, true
	}
	args, err := x.arguments(open+1, closeEnd-1)
	if err != nil {
		x.fail(i, err)
		return string(x.src[i:closeEnd]), closeEnd, true
	}

	next := closeEnd
	var trailing *argument
	if j := skipHorizontalSpace(x.src[:end], closeEnd); macro == TitleMacro && j < end && x.src[j] == '{' {
		braceEnd, err := skipBalanced(x.src[:end], j, '{', '}')
		if err != nil {
			x.fail(j, err)
			return string(x.src[i:braceEnd]), braceEnd, true
		}
		trailing = &argument{label: rewrite.ContentLabel, start: j, end: braceEnd}
		next = braceEnd
	}

	var replacement string
	var ok bool
	if macro == TextMacro {
		replacement, ok = x.text(i, args)
	} else {
		replacement, ok = x.title(i, args, trailing)
	}
	if !ok {
		return string(x.src[i:next]), next, true
	}
	return replacement, next, true
}

func (x *expander) text(at int, args []argument) (string, bool) {
	if len(args) == 0 {
		x.fail(at, errors.MacroError(errors.ErrNotAStringLiteral,
			"accessibleText requires at least one string literal argument").Build())
		return "", false
	}
	if len(args) > 1 {
		x.fail(at, errors.MacroError(nil, "accessibleText takes exactly one argument").Build())
		return "", false
	}
	seg, ok := x.segment(args[0])
	if !ok {
		return "", false
	}
	res := x.rw.Text(seg)
	x.discover(table.VariantText, res, seg, at)
	return rewrite.Emit(res.Expr), true
}

func (x *expander) title(at int, args []argument, trailing *argument) (string, bool) {
	if len(args) == 0 {
		x.fail(at, errors.MacroError(errors.ErrNotAStringLiteral,
			"accessibleNavigationTitle requires a string literal as the first argument").Build())
		return "", false
	}
	seg, ok := x.segment(args[0])
	if !ok {
		return "", false
	}

	var content *rewrite.ContentBlock
	contentArg := trailing
	switch {
	case len(args) > 2 || (len(args) == 2 && trailing != nil):
		x.fail(at, errors.MacroError(nil, "accessibleNavigationTitle takes a title and one content block").Build())
		return "", false
	case len(args) == 2:
		contentArg = &args[1]
	}
	if contentArg != nil {
		if contentArg.label != "" && contentArg.label != rewrite.ContentLabel {
			x.fail(contentArg.start, errors.MacroError(nil, "unexpected argument label "+contentArg.label).Build())
			return "", false
		}
		if x.src[contentArg.start] == '{' {
			if closeEnd, err := skipBalanced(x.src, contentArg.start, '{', '}'); err == nil && closeEnd == contentArg.end {
				content = &rewrite.ContentBlock{
					Source: x.expand(contentArg.start, contentArg.end),
					At:     x.pos.at(contentArg.start),
				}
			}
		}
	}

	res, err := x.rw.Title(seg, content)
	if err != nil {
		x.fail(at, err)
		return "", false
	}
	x.discover(table.VariantTitle, res, seg, at)
	return rewrite.Emit(res.Expr), true
}

// segment turns the first macro argument into a segmented literal. Anything
// but a lone single-line string literal is passed on as an opaque host
// expression, which the segmenter rejects.
func (x *expander) segment(arg argument) (literal.SegmentedLiteral, bool) {
	var expr literal.Expr = literal.HostExpr{
		Source: string(x.src[arg.start:arg.end]),
		At:     x.pos.at(arg.start),
	}
	if arg.label == "" && x.src[arg.start] == '"' && !bytes.HasPrefix(x.src[arg.start:arg.end], []byte(`"""`)) {
		if strEnd, err := skipString(x.src, arg.start); err == nil && strEnd == arg.end {
			lit, err := tokenizeLiteral(x.src, arg.start, arg.end, x.pos)
			if err != nil {
				x.fail(arg.start, errors.MacroError(nil, err.Error()).Build())
				return nil, false
			}
			expr = lit
		}
	}
	seg, err := literal.Split(expr)
	if err != nil {
		x.fail(arg.start, err)
		return nil, false
	}
	return seg, true
}

func (x *expander) discover(v table.Variant, res rewrite.Result, seg literal.SegmentedLiteral, at int) {
	x.discoveries = append(x.discoveries, table.Discovery{
		Variant: v,
		Key:     res.Key,
		Seed:    seg.SeedTemplate(),
		Origin:  x.pos.at(at),
	})
}

// arguments splits the argument list between the parentheses of a call.
func (x *expander) arguments(start, end int) ([]argument, error) {
	var args []argument
	i := skipSpace(x.src[:end], start)
	for i < end {
		arg := argument{}
		if l, next, ok := labelAt(x.src, i, end); ok {
			arg.label = l
			i = skipSpace(x.src[:end], next)
		}
		exprStart := i
		var err error
		if i, err = scanArgument(x.src, i, end); err != nil {
			return nil, err
		}
		exprEnd := i
		for exprEnd > exprStart && isSpace(x.src[exprEnd-1]) {
			exprEnd--
		}
		if exprEnd == exprStart {
			return nil, stderrors.New("empty argument")
		}
		arg.start, arg.end = exprStart, exprEnd
		args = append(args, arg)
		if i < end {
			i = skipSpace(x.src[:end], i+1) // past ','
			if i >= end {
				return nil, stderrors.New("trailing comma in argument list")
			}
		}
	}
	return args, nil
}

func (x *expander) fail(at int, err error) {
	pos := x.pos.at(at)
	classified, ok := errors.AsClassified(err)
	if !ok {
		classified = errors.MacroError(nil, err.Error()).Build()
	}
	if _, has := classified.Context().Get("line"); has {
		classified = classified.WithContext("file", pos.File)
	} else {
		classified = classified.
			WithContext("file", pos.File).
			WithContext("line", pos.Line).
			WithContext("column", pos.Column)
	}
	x.diags = append(x.diags, classified)
}

func skipHorizontalSpace(src []byte, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}
