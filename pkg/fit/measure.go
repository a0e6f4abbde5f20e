package fit

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Constraints describe the space a host offers a piece of text.
type Constraints struct {
	// Width is the available width in cells at scale 1.
	Width int
	// Lines is the number of lines the text may wrap onto. Values below 1 mean 1.
	Lines int
	// Scale is the dynamic type multiplier. Values <= 0 and non-finite
	// values mean 1; tiny values are clamped to MinScale.
	Scale float64
}

// MinScale is the smallest Scale honored by Columns.
const MinScale = 0.01

// Columns returns the usable cells per line after applying Scale.
func (c Constraints) Columns() int {
	scale := c.Scale
	switch {
	case scale <= 0, math.IsNaN(scale), math.IsInf(scale, 0):
		scale = 1
	case scale < MinScale:
		scale = MinScale
	}
	return int(float64(c.Width) / scale)
}

// MaxLines returns the normalized line budget.
func (c Constraints) MaxLines() int {
	if c.Lines < 1 {
		return 1
	}
	return c.Lines
}

// Cells returns the display width of s: wide and fullwidth runes count two
// cells, combining marks, format and control characters count zero.
func Cells(s string) int {
	n := 0
	for _, r := range s {
		n += runeCells(r)
	}
	return n
}

func runeCells(r rune) int {
	switch {
	case unicode.Is(unicode.Mn, r), unicode.Is(unicode.Me, r), unicode.Is(unicode.Cf, r), unicode.IsControl(r):
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// WidthFits returns a predicate reporting whether a rendering fits inside c
// without truncation, wrapping greedily at spaces and honouring explicit
// newlines. A single word wider than a line never fits.
func WidthFits(c Constraints) func(string) bool {
	cols, maxLines := c.Columns(), c.MaxLines()
	return func(s string) bool {
		if cols <= 0 {
			return s == ""
		}
		return linesNeeded(s, cols, maxLines) <= maxLines
	}
}

// linesNeeded counts wrapped lines, stopping early once limit is exceeded.
// A word that cannot fit on any line reports limit+1.
func linesNeeded(s string, cols, limit int) int {
	lines := 0
	for _, para := range strings.Split(s, "\n") {
		lines++
		used := 0
		for _, word := range strings.Fields(para) {
			w := Cells(word)
			if w > cols {
				return limit + 1
			}
			switch {
			case used == 0:
				used = w
			case used+1+w <= cols:
				used += 1 + w
			default:
				lines++
				used = w
			}
			if lines > limit {
				return lines
			}
		}
		if lines > limit {
			return lines
		}
	}
	return lines
}
