// Package literal splits a tokenized string literal into fixed text and
// interpolated sub-expressions.
//
// The host front end (see internal/source) owns tokenization; this package
// only consumes the resulting Expr values, so any host parser can bind to it.
package literal

import "fmt"

// Position locates an expression in a source file. Line and Column are 1-based.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Expr is a host expression handed to a macro argument.
type Expr interface {
	Pos() Position
}

// HostExpr is an opaque host expression, kept as source text.
type HostExpr struct {
	Source string
	At     Position
}

func (e HostExpr) Pos() Position { return e.At }

// Token is one run of a tokenized string literal: either literal text or an
// embedded expression (Interp non-nil).
type Token struct {
	Text   string
	Interp *HostExpr
}

// TextToken returns a literal text run.
func TextToken(s string) Token { return Token{Text: s} }

// InterpToken returns an embedded expression token.
func InterpToken(e HostExpr) Token { return Token{Interp: &e} }

// StringLiteral is a string literal already split into tokens by the host.
// Text runs hold the evaluated characters, escapes already decoded.
type StringLiteral struct {
	Tokens []Token
	At     Position
}

func (l *StringLiteral) Pos() Position { return l.At }
