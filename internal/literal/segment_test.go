package literal

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/fittext/internal/foundation/errors"
)

func hiNameLiteral() *StringLiteral {
	return &StringLiteral{Tokens: []Token{
		TextToken("Hi "),
		InterpToken(HostExpr{Source: "name"}),
		TextToken("! I am testing "),
		InterpToken(HostExpr{Source: "feature"}),
	}}
}

func TestSplit_InterleavesFixedAndInterpolations(t *testing.T) {
	seg, err := Split(hiNameLiteral())
	require.NoError(t, err)

	want := SegmentedLiteral{
		Fixed{Text: "Hi "},
		Interpolation{Expr: HostExpr{Source: "name"}},
		Fixed{Text: "! I am testing "},
		Interpolation{Expr: HostExpr{Source: "feature"}},
	}
	if diff := cmp.Diff(want, seg); diff != "" {
		t.Fatalf("Split() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "Hi ! I am testing ", seg.FixedText())
	require.Equal(t, []HostExpr{{Source: "name"}, {Source: "feature"}}, seg.Interpolations())
	require.Equal(t, "Hi {1}! I am testing {2}", seg.SeedTemplate())
}

func TestSplit_CoalescesTextRuns(t *testing.T) {
	seg, err := Split(&StringLiteral{Tokens: []Token{
		TextToken("Hello, "),
		TextToken(""),
		TextToken("world!"),
	}})
	require.NoError(t, err)
	require.Equal(t, SegmentedLiteral{Fixed{Text: "Hello, world!"}}, seg)
}

func TestSplit_DegenerateLiterals(t *testing.T) {
	empty, err := Split(&StringLiteral{})
	require.NoError(t, err)
	require.Empty(t, empty)
	require.Equal(t, "", empty.FixedText())
	require.Equal(t, "", empty.SeedTemplate())

	onlyInterp, err := Split(&StringLiteral{Tokens: []Token{InterpToken(HostExpr{Source: "x"})}})
	require.NoError(t, err)
	require.Equal(t, "", onlyInterp.FixedText())
	require.Equal(t, "{1}", onlyInterp.SeedTemplate())
}

func TestSplit_NotAStringLiteral(t *testing.T) {
	_, err := Split(HostExpr{Source: "greeting", At: Position{File: "View.swift", Line: 4, Column: 29}})
	require.Error(t, err)
	require.True(t, errors.Is(err, ferrors.ErrNotAStringLiteral))

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	file, _ := classified.Context().GetString("file")
	require.Equal(t, "View.swift", file)
	src, _ := classified.Context().GetString("expression")
	require.Equal(t, "greeting", src)

	_, err = Split(nil)
	require.True(t, errors.Is(err, ferrors.ErrNotAStringLiteral))

	var nilLit *StringLiteral
	_, err = Split(nilLit)
	require.True(t, errors.Is(err, ferrors.ErrNotAStringLiteral))
}

func TestSeedTemplate_EscapesBraces(t *testing.T) {
	seg, err := Split(&StringLiteral{Tokens: []Token{
		TextToken("{x} = "),
		InterpToken(HostExpr{Source: "x"}),
	}})
	require.NoError(t, err)
	require.Equal(t, "{{x}} = {1}", seg.SeedTemplate())
}

func TestReconstruct_PreservesStructure(t *testing.T) {
	cases := []*StringLiteral{
		hiNameLiteral(),
		{Tokens: []Token{TextToken("Hello, world!")}},
		{Tokens: []Token{InterpToken(HostExpr{Source: "a"}), InterpToken(HostExpr{Source: "b"})}},
		{Tokens: []Token{TextToken("a"), InterpToken(HostExpr{Source: "b"}), TextToken("c")}},
	}
	for _, lit := range cases {
		seg, err := Split(lit)
		require.NoError(t, err)

		// Substituting dummies must leave every fixed run in place, in order.
		got := seg.Reconstruct(func(int, HostExpr) string { return "\x00" })
		var want strings.Builder
		for _, tok := range lit.Tokens {
			if tok.Interp != nil {
				want.WriteString("\x00")
			} else {
				want.WriteString(tok.Text)
			}
		}
		require.Equal(t, want.String(), got)
		require.Equal(t, len(seg.Interpolations()), strings.Count(got, "\x00"))
	}
}

func TestReconstruct_FillsInOrder(t *testing.T) {
	seg, err := Split(hiNameLiteral())
	require.NoError(t, err)
	values := []string{"Morris", "accessibility"}
	got := seg.Reconstruct(func(i int, _ HostExpr) string { return values[i] })
	require.Equal(t, "Hi Morris! I am testing accessibility", got)
}
