package source

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/fittext/internal/literal"
)

// positions maps byte offsets to 1-based line/column pairs.
type positions struct {
	file  string
	src   []byte
	lines []int
}

func newPositions(file string, src []byte) *positions {
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &positions{file: file, src: src, lines: lines}
}

func (p *positions) at(off int) literal.Position {
	line := sort.Search(len(p.lines), func(i int) bool { return p.lines[i] > off }) - 1
	col := utf8.RuneCount(p.src[p.lines[line]:off]) + 1
	return literal.Position{File: p.file, Line: line + 1, Column: col}
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= 0x80
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func skipSpace(src []byte, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

// skipComment returns the offset after the comment starting at i, or i when
// there is none. Block comments nest.
func skipComment(src []byte, i int) (int, error) {
	if i+1 >= len(src) || src[i] != '/' {
		return i, nil
	}
	switch src[i+1] {
	case '/':
		for i < len(src) && src[i] != '\n' {
			i++
		}
		return i, nil
	case '*':
		depth := 0
		for i+1 < len(src) {
			switch {
			case src[i] == '/' && src[i+1] == '*':
				depth++
				i += 2
			case src[i] == '*' && src[i+1] == '/':
				depth--
				i += 2
				if depth == 0 {
					return i, nil
				}
			default:
				i++
			}
		}
		return len(src), fmt.Errorf("unterminated block comment")
	}
	return i, nil
}

// skipString returns the offset after the string literal opening at i.
func skipString(src []byte, i int) (int, error) {
	if strings.HasPrefix(string(src[i:min(i+3, len(src))]), `"""`) {
		end := strings.Index(string(src[i+3:]), `"""`)
		if end < 0 {
			return len(src), fmt.Errorf("unterminated multi-line string literal")
		}
		return i + 3 + end + 3, nil
	}
	i++
	for i < len(src) {
		switch src[i] {
		case '"':
			return i + 1, nil
		case '\n':
			return i, fmt.Errorf("unterminated string literal")
		case '\\':
			if i+1 < len(src) && src[i+1] == '(' {
				end, err := skipBalanced(src, i+1, '(', ')')
				if err != nil {
					return end, err
				}
				i = end
				continue
			}
			i += 2
			continue
		}
		i++
	}
	return len(src), fmt.Errorf("unterminated string literal")
}

// skipBalanced returns the offset after the close that matches the open at
// i, skipping strings and comments. Other bracket kinds are tracked so a
// stray close inside them does not end the scan early.
func skipBalanced(src []byte, i int, open, close byte) (int, error) {
	var stack []byte
	for i < len(src) {
		c := src[i]
		switch {
		case isQuote(c):
			if end, ok, err := skipLiteral(src, i); ok {
				if err != nil {
					return end, err
				}
				i = end
				continue
			}
		case c == '/' && i+1 < len(src) && (src[i+1] == '/' || src[i+1] == '*'):
			end, err := skipComment(src, i)
			if err != nil {
				return end, err
			}
			i = end
			continue
		case c == '(' || c == '[' || c == '{':
			stack = append(stack, closerOf(c))
		case c == ')' || c == ']' || c == '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return i, fmt.Errorf("unbalanced %q", c)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				if c != close {
					return i, fmt.Errorf("expected %q, found %q", close, c)
				}
				return i + 1, nil
			}
		}
		i++
	}
	return len(src), fmt.Errorf("missing %q to match %q", close, open)
}

func isQuote(c byte) bool {
	return c == '"' || c == '#' || c == '`' || c == '\''
}

// skipLiteral returns the offset after the quoted span opening at i: a
// string, a raw string such as #"..."#, a backtick span or a rune literal.
// ok is false when no quoted span starts at i.
func skipLiteral(src []byte, i int) (next int, ok bool, err error) {
	switch src[i] {
	case '"':
		next, err = skipString(src, i)
		return next, true, err
	case '#':
		return skipRawString(src, i)
	case '`':
		if end := bytes.IndexByte(src[i+1:], '`'); end >= 0 {
			return i + 1 + end + 1, true, nil
		}
	case '\'':
		for j := i + 1; j < len(src) && src[j] != '\n'; j++ {
			switch src[j] {
			case '\\':
				j++
			case '\'':
				return j + 1, true, nil
			}
		}
	}
	return i, false, nil
}

// skipRawString returns the offset after the raw string opening at i. Its
// delimiters carry the same number of '#' on both sides and the body has no
// escapes at that level, so it is skipped verbatim.
func skipRawString(src []byte, i int) (int, bool, error) {
	j := i
	for j < len(src) && src[j] == '#' {
		j++
	}
	if j >= len(src) || src[j] != '"' {
		return i, false, nil
	}
	hashes := string(src[i:j])
	if bytes.HasPrefix(src[j:], []byte(`"""`)) {
		closer := []byte(`"""` + hashes)
		end := bytes.Index(src[j+3:], closer)
		if end < 0 {
			return len(src), true, fmt.Errorf("unterminated multi-line raw string literal")
		}
		return j + 3 + end + len(closer), true, nil
	}
	closer := []byte(`"` + hashes)
	for k := j + 1; k < len(src); k++ {
		if src[k] == '\n' {
			return k, true, fmt.Errorf("unterminated raw string literal")
		}
		if bytes.HasPrefix(src[k:], closer) {
			return k + len(closer), true, nil
		}
	}
	return len(src), true, fmt.Errorf("unterminated raw string literal")
}

// scanArgument returns the offset of the first top-level ',' in src[i:end],
// or end when there is none.
func scanArgument(src []byte, i, end int) (int, error) {
	for i < end && src[i] != ',' {
		switch c := src[i]; {
		case isQuote(c):
			next, ok, err := skipLiteral(src[:end], i)
			if err != nil {
				return next, err
			}
			if !ok {
				next = i + 1
			}
			i = next
		case c == '/' && i+1 < end && (src[i+1] == '/' || src[i+1] == '*'):
			next, err := skipComment(src[:end], i)
			if err != nil {
				return next, err
			}
			i = next
		case c == '(' || c == '[' || c == '{':
			next, err := skipBalanced(src[:end], i, c, closerOf(c))
			if err != nil {
				return next, err
			}
			i = next
		default:
			i++
		}
	}
	return i, nil
}

// labelAt matches `identifier :` (but not `::`) at i.
func labelAt(src []byte, i, end int) (string, int, bool) {
	j := i
	for j < end && isIdentByte(src[j]) {
		j++
	}
	if j == i || src[i] >= '0' && src[i] <= '9' {
		return "", i, false
	}
	k := j
	for k < end && (src[k] == ' ' || src[k] == '\t') {
		k++
	}
	if k < end && src[k] == ':' && (k+1 >= end || src[k+1] != ':') {
		return string(src[i:j]), k + 1, true
	}
	return "", i, false
}

func closerOf(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

// tokenizeLiteral splits the single-line string literal src[start:end]
// (quotes included) into text runs and interpolations.
func tokenizeLiteral(src []byte, start, end int, pos *positions) (*literal.StringLiteral, error) {
	lit := &literal.StringLiteral{At: pos.at(start)}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			lit.Tokens = append(lit.Tokens, literal.TextToken(text.String()))
			text.Reset()
		}
	}

	i := start + 1
	for i < end-1 {
		c := src[i]
		if c != '\\' {
			text.WriteByte(c)
			i++
			continue
		}
		if i+1 >= end-1 {
			return nil, fmt.Errorf("dangling escape at %s", pos.at(i))
		}
		switch esc := src[i+1]; esc {
		case '(':
			close, err := skipBalanced(src, i+1, '(', ')')
			if err != nil {
				return nil, err
			}
			exprStart, exprEnd := i+2, close-1
			for exprStart < exprEnd && isSpace(src[exprStart]) {
				exprStart++
			}
			for exprEnd > exprStart && isSpace(src[exprEnd-1]) {
				exprEnd--
			}
			if exprStart == exprEnd {
				return nil, fmt.Errorf("empty interpolation at %s", pos.at(i))
			}
			if label, _, ok := labelAt(src, exprStart, exprEnd); ok {
				return nil, fmt.Errorf("interpolation with argument label %q is not supported at %s", label, pos.at(i))
			}
			if comma, err := scanArgument(src, exprStart, exprEnd); err != nil {
				return nil, err
			} else if comma < exprEnd {
				return nil, fmt.Errorf("interpolation with more than one argument is not supported at %s", pos.at(i))
			}
			flush()
			lit.Tokens = append(lit.Tokens, literal.InterpToken(literal.HostExpr{
				Source: string(src[exprStart:exprEnd]),
				At:     pos.at(exprStart),
			}))
			i = close
			continue
		case 'n':
			text.WriteByte('\n')
		case 't':
			text.WriteByte('\t')
		case 'r':
			text.WriteByte('\r')
		case '0':
			text.WriteByte(0)
		case '\\', '"', '\'':
			text.WriteByte(esc)
		case 'u':
			r, next, err := decodeUnicodeEscape(src, i+2, end-1)
			if err != nil {
				return nil, fmt.Errorf("%w at %s", err, pos.at(i))
			}
			text.WriteRune(r)
			i = next
			continue
		default:
			return nil, fmt.Errorf("invalid escape sequence \\%c at %s", esc, pos.at(i))
		}
		i += 2
	}
	flush()
	return lit, nil
}

// decodeUnicodeEscape parses {XXXX} at i and returns the rune and the offset after '}'.
func decodeUnicodeEscape(src []byte, i, limit int) (rune, int, error) {
	if i >= limit || src[i] != '{' {
		return 0, i, fmt.Errorf("invalid unicode escape")
	}
	closeIdx := strings.IndexByte(string(src[i:limit]), '}')
	if closeIdx < 2 || closeIdx > 9 {
		return 0, i, fmt.Errorf("invalid unicode escape")
	}
	v, err := strconv.ParseUint(string(src[i+1:i+closeIdx]), 16, 32)
	if err != nil || v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
		return 0, i, fmt.Errorf("invalid unicode scalar in escape")
	}
	return rune(v), i + closeIdx + 1, nil
}
