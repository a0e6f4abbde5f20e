// Package rewrite turns a segmented literal into the accessor call that
// replaces a macro invocation.
//
// The output is a small expression IR, independent of any host parser, and
// Emit prints it in the host's call syntax. Rewriting never touches the
// candidate table; the build pipeline synchronizes it separately.
package rewrite

// Expression is a node of the replacement expression tree.
type Expression interface {
	isExpression()
}

// Ident is a bare identifier.
type Ident struct {
	Name string
}

// Member is Base.Name.
type Member struct {
	Base Expression
	Name string
}

// StringLit is a plain string literal without interpolation.
type StringLit struct {
	Value string
}

// Raw is host source forwarded verbatim (an interpolation sub-expression).
type Raw struct {
	Source string
}

// Closure is an opaque content block such as `{ ScrollView { ... } }`,
// forwarded verbatim including its braces.
type Closure struct {
	Source string
}

// Argument is one call argument with an optional label.
type Argument struct {
	Label string
	Value Expression
}

// Call is Callee(Args...).
type Call struct {
	Callee Expression
	Args   []Argument
}

func (Ident) isExpression()     {}
func (Member) isExpression()    {}
func (StringLit) isExpression() {}
func (Raw) isExpression()       {}
func (Closure) isExpression()   {}
func (Call) isExpression()      {}
