package rewrite

import (
	"fmt"
	"strings"
)

// Emit prints e in the host call syntax:
//
//	AccessibleTextContainer.texts(key: "315f…", name, feature)
func Emit(e Expression) string {
	var b strings.Builder
	emit(&b, e)
	return b.String()
}

func emit(b *strings.Builder, e Expression) {
	switch v := e.(type) {
	case Ident:
		b.WriteString(v.Name)
	case Member:
		emit(b, v.Base)
		b.WriteByte('.')
		b.WriteString(v.Name)
	case StringLit:
		b.WriteString(Quote(v.Value))
	case Raw:
		b.WriteString(v.Source)
	case Closure:
		b.WriteString(v.Source)
	case Call:
		emit(b, v.Callee)
		b.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if a.Label != "" {
				b.WriteString(a.Label)
				b.WriteString(": ")
			}
			emit(b, a.Value)
		}
		b.WriteByte(')')
	default:
		panic(fmt.Sprintf("rewrite: unknown expression %T", e))
	}
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\0`,
)

// Quote returns s as a host string literal. Only the escapes every C-family
// host shares are used.
func Quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
