package literal

import (
	"strings"

	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/pkg/fit"
)

// Segment is either Fixed or Interpolation.
type Segment interface {
	isSegment()
}

// Fixed is verbatim literal text.
type Fixed struct {
	Text string
}

// Interpolation is an embedded host expression substituted at evaluation.
type Interpolation struct {
	Expr HostExpr
}

func (Fixed) isSegment()         {}
func (Interpolation) isSegment() {}

// SegmentedLiteral preserves the original interleaving of fixed text and
// interpolations. Adjacent fixed runs are always merged and never empty.
type SegmentedLiteral []Segment

// Split segments expr. Anything other than a *StringLiteral fails with
// errors.ErrNotAStringLiteral: the content key must be computable without
// evaluating arbitrary expressions.
func Split(expr Expr) (SegmentedLiteral, error) {
	lit, ok := expr.(*StringLiteral)
	if !ok || lit == nil {
		return nil, notALiteral(expr)
	}

	var out SegmentedLiteral
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			out = append(out, Fixed{Text: pending.String()})
			pending.Reset()
		}
	}
	for _, tok := range lit.Tokens {
		if tok.Interp != nil {
			flush()
			out = append(out, Interpolation{Expr: *tok.Interp})
			continue
		}
		pending.WriteString(tok.Text)
	}
	flush()
	return out, nil
}

// FixedText concatenates the fixed segments, interpolations excluded. This is
// the input of the content hash.
func (s SegmentedLiteral) FixedText() string {
	var b strings.Builder
	for _, seg := range s {
		if f, ok := seg.(Fixed); ok {
			b.WriteString(f.Text)
		}
	}
	return b.String()
}

// Interpolations returns the embedded expressions in left-to-right order.
func (s SegmentedLiteral) Interpolations() []HostExpr {
	var out []HostExpr
	for _, seg := range s {
		if in, ok := seg.(Interpolation); ok {
			out = append(out, in.Expr)
		}
	}
	return out
}

// Reconstruct evaluates the literal, asking fill for the value of the i-th
// interpolation (0-based).
func (s SegmentedLiteral) Reconstruct(fill func(i int, e HostExpr) string) string {
	var b strings.Builder
	i := 0
	for _, seg := range s {
		switch v := seg.(type) {
		case Fixed:
			b.WriteString(v.Text)
		case Interpolation:
			b.WriteString(fill(i, v.Expr))
			i++
		}
	}
	return b.String()
}

// SeedTemplate renders the literal as a candidate template: fixed text with
// braces escaped and one positional placeholder per interpolation, numbered
// from 1 by position.
func (s SegmentedLiteral) SeedTemplate() string {
	var b strings.Builder
	n := 0
	for _, seg := range s {
		switch v := seg.(type) {
		case Fixed:
			b.WriteString(fit.Escape(v.Text))
		case Interpolation:
			n++
			b.WriteString(fit.Placeholder(n))
		}
	}
	return b.String()
}

func notALiteral(expr Expr) error {
	b := errors.MacroError(errors.ErrNotAStringLiteral, "macro requires a string literal as the first argument")
	if lit, isLit := expr.(*StringLiteral); expr == nil || (isLit && lit == nil) {
		return b.Build()
	}
	pos := expr.Pos()
	b = b.WithContext("file", pos.File).WithContext("line", pos.Line).WithContext("column", pos.Column)
	if h, ok := expr.(HostExpr); ok {
		b = b.WithContext("expression", h.Source)
	}
	return b.Build()
}
