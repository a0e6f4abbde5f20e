package fit

import (
	"fmt"
	"strconv"
	"strings"
)

// Template is a candidate rendering with positional placeholders.
//
// The syntax is plain text with {N} (N >= 1) standing for the N-th
// interpolation argument. Literal braces are written {{ and }}.
type Template struct {
	source string
	parts  []part
	slots  int
}

type part struct {
	text string
	slot int // 0 for literal text
}

// ParseTemplate parses src into a Template.
func ParseTemplate(src string) (Template, error) {
	t := Template{source: src}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			t.parts = append(t.parts, part{text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '{':
			if i+1 < len(src) && src[i+1] == '{' {
				text.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return Template{}, fmt.Errorf("template %q: unclosed placeholder at byte %d", src, i)
			}
			n, err := strconv.Atoi(src[i+1 : i+end])
			if err != nil || n < 1 || src[i+1] == '+' {
				return Template{}, fmt.Errorf("template %q: invalid placeholder %q at byte %d", src, src[i:i+end+1], i)
			}
			flush()
			t.parts = append(t.parts, part{slot: n})
			t.slots = max(t.slots, n)
			i += end
		case '}':
			if i+1 < len(src) && src[i+1] == '}' {
				text.WriteByte('}')
				i++
				continue
			}
			return Template{}, fmt.Errorf("template %q: unmatched '}' at byte %d", src, i)
		default:
			text.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error. Generated
// accessor code uses it for templates that were validated at build time.
func MustParseTemplate(src string) Template {
	t, err := ParseTemplate(src)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the template text as written.
func (t Template) Source() string { return t.source }

// Slots returns the highest placeholder index used, or 0.
func (t Template) Slots() int { return t.slots }

// Render substitutes args into the placeholders. A placeholder without a
// matching argument is left as written.
func (t Template) Render(args ...any) string {
	var b strings.Builder
	for _, p := range t.parts {
		switch {
		case p.slot == 0:
			b.WriteString(p.text)
		case p.slot <= len(args):
			fmt.Fprint(&b, args[p.slot-1])
		default:
			b.WriteString(Placeholder(p.slot))
		}
	}
	return b.String()
}

// Walk calls text for literal runs and slot for placeholders, in order.
// Code generators use it to translate templates into host format strings.
func (t Template) Walk(text func(string), slot func(int)) {
	for _, p := range t.parts {
		if p.slot == 0 {
			text(p.text)
		} else {
			slot(p.slot)
		}
	}
}

// Placeholder returns the template spelling of the n-th slot.
func Placeholder(n int) string {
	return "{" + strconv.Itoa(n) + "}"
}

var braceEscaper = strings.NewReplacer("{", "{{", "}", "}}")

// Escape quotes literal text so it survives ParseTemplate unchanged.
func Escape(text string) string {
	return braceEscaper.Replace(text)
}
