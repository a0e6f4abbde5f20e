package source

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fittext/internal/contentkey"
	ferrors "git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/literal"
	"git.home.luguber.info/inful/fittext/internal/rewrite"
	"git.home.luguber.info/inful/fittext/internal/table"
)

const helloKey = "315f5bdb76d078c43b8ac0064e4a0164612b1fce77c869345bfc94c75894edd3"

func expand(t *testing.T, src string) Result {
	t.Helper()
	res, err := Expand("View.swift", []byte(src), rewrite.Rewriter{})
	require.NoError(t, err)
	return res
}

func TestExpand_FixedText(t *testing.T) {
	res := expand(t, `Text(#accessibleText("Hello, world!"))`)

	assert.Equal(t, `Text(AccessibleTextContainer.texts(key: "`+helloKey+`"))`, string(res.Output))
	want := []table.Discovery{{
		Variant: table.VariantText,
		Key:     helloKey,
		Seed:    "Hello, world!",
		Origin:  literal.Position{File: "View.swift", Line: 1, Column: 6},
	}}
	if diff := cmp.Diff(want, res.Discoveries); diff != "" {
		t.Fatalf("discoveries mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_Interpolations(t *testing.T) {
	res := expand(t, `let s = #accessibleText("Hi \(name)! I am testing \(feature)")`)

	key := contentkey.Hash("Hi ! I am testing ")
	assert.Equal(t, "7c5e3652067d9e3ed721d1ddc4a69fbb1a87ea8bcbcd3964764e5adac9c456ee", string(key))
	assert.Equal(t, `let s = AccessibleTextContainer.texts(key: "`+string(key)+`", name, feature)`, string(res.Output))
	require.Len(t, res.Discoveries, 1)
	assert.Equal(t, "Hi {1}! I am testing {2}", res.Discoveries[0].Seed)
}

func TestExpand_InterpolationWithNestedCall(t *testing.T) {
	res := expand(t, `#accessibleText("Total: \(format(price, "%.2f"))")`)

	assert.Equal(t,
		`AccessibleTextContainer.texts(key: "`+string(contentkey.Hash("Total: "))+`", format(price, "%.2f"))`,
		string(res.Output))
}

func TestExpand_EscapesAndBraces(t *testing.T) {
	res := expand(t, `#accessibleText("Say \"{hi}\"\n")`)

	require.Len(t, res.Discoveries, 1)
	assert.Equal(t, contentkey.Hash("Say \"{hi}\"\n"), res.Discoveries[0].Key)
	assert.Equal(t, "Say \"{{hi}}\"\n", res.Discoveries[0].Seed)
}

func TestExpand_EmptyLiteral(t *testing.T) {
	res := expand(t, `#accessibleText("")`)

	require.Len(t, res.Discoveries, 1)
	assert.Equal(t, contentkey.Hash(""), res.Discoveries[0].Key)
	assert.Empty(t, res.Discoveries[0].Seed)
}

func TestExpand_NavigationTitle(t *testing.T) {
	src := "List {}\n  #accessibleNavigationTitle(\"Settings\", content: { Text(\"x\") })"
	res := expand(t, src)

	assert.Equal(t,
		"List {}\n  AccessibleTextContainer.navigationTitles(key: \"74a883a037bc227f91891ab654a753d3a99f31ab06ae5b5d2b6e594a692b41f8\", content: { Text(\"x\") })",
		string(res.Output))
	require.Len(t, res.Discoveries, 1)
	assert.Equal(t, table.VariantTitle, res.Discoveries[0].Variant)
	assert.Equal(t, literal.Position{File: "View.swift", Line: 2, Column: 3}, res.Discoveries[0].Origin)
}

func TestExpand_NavigationTitleTrailingClosure(t *testing.T) {
	res := expand(t, `#accessibleNavigationTitle("Settings") { Form {} }`)

	assert.Equal(t,
		`AccessibleTextContainer.navigationTitles(key: "74a883a037bc227f91891ab654a753d3a99f31ab06ae5b5d2b6e594a692b41f8", content: { Form {} })`,
		string(res.Output))
}

func TestExpand_NestedMacroInTitleContent(t *testing.T) {
	src := `#accessibleNavigationTitle("Settings", content: { Button(#accessibleText("Close")) {} })`
	res := expand(t, src)

	closeKey := "7d9eb7acb13e24625c404401d8e88b2350e32162455885f18276cf802f7701ed"
	assert.Contains(t, string(res.Output), `Button(AccessibleTextContainer.texts(key: "`+closeKey+`")) {}`)
	require.Len(t, res.Discoveries, 2)
	assert.Equal(t, table.VariantText, res.Discoveries[0].Variant)
	assert.Equal(t, contentkey.ContentKey(closeKey), res.Discoveries[0].Key)
	assert.Equal(t, table.VariantTitle, res.Discoveries[1].Variant)
}

func TestExpand_IgnoresCommentsAndStrings(t *testing.T) {
	src := "// #accessibleText(\"a\")\n/* #accessibleText(\"b\") /* nested */ */\nlet s = \"#accessibleText(\\\"c\\\")\"\n"
	res := expand(t, src)

	assert.Equal(t, src, string(res.Output))
	assert.Empty(t, res.Discoveries)
	assert.False(t, res.Changed())
}

func TestExpand_MentionWithoutCallIsUntouched(t *testing.T) {
	src := "let name = #accessibleTextual\nlet other = #accessibleText\n"
	res := expand(t, src)

	assert.Equal(t, src, string(res.Output))
	assert.Empty(t, res.Discoveries)
}

func TestExpand_CustomAccessorNames(t *testing.T) {
	rw := rewrite.Rewriter{Container: "Strings", TextAccessor: "text", TitleAccessor: "title"}
	res, err := Expand("a.swift", []byte(`#accessibleText("Hello, world!")`), rw)
	require.NoError(t, err)

	assert.Equal(t, `Strings.text(key: "`+helloKey+`")`, string(res.Output))
}

func TestExpand_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
		line int
	}{
		{name: "identifier argument", src: "\nText(#accessibleText(greeting))", kind: ferrors.ErrNotAStringLiteral, line: 2},
		{name: "concatenation", src: `#accessibleText("a" + b)`, kind: ferrors.ErrNotAStringLiteral, line: 1},
		{name: "no arguments", src: `#accessibleText()`, kind: ferrors.ErrNotAStringLiteral, line: 1},
		{name: "multi-line literal", src: "#accessibleText(\"\"\"\nhi\n\"\"\")", kind: ferrors.ErrNotAStringLiteral, line: 1},
		{name: "missing content", src: `#accessibleNavigationTitle("Settings")`, kind: ferrors.ErrMissingContentArgument, line: 1},
		{name: "content not a closure", src: `#accessibleNavigationTitle("Settings", content: view)`, kind: ferrors.ErrMissingContentArgument, line: 1},
		{name: "title not a literal", src: `#accessibleNavigationTitle(title, content: {})`, kind: ferrors.ErrNotAStringLiteral, line: 1},
		{name: "raw string literal", src: `#accessibleText(#"a"#)`, kind: ferrors.ErrNotAStringLiteral, line: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Expand("View.swift", []byte(tt.src), rewrite.Rewriter{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Empty(t, res.Discoveries)

			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, ferrors.CategoryMacro, classified.Category())
			file, _ := classified.Context().GetString("file")
			assert.Equal(t, "View.swift", file)
			line, _ := classified.Context().Get("line")
			assert.Equal(t, tt.line, line)
		})
	}
}

func TestExpand_ExtraTextArguments(t *testing.T) {
	_, err := Expand("View.swift", []byte(`#accessibleText("a", "b")`), rewrite.Rewriter{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryMacro))
	assert.False(t, errors.Is(err, ferrors.ErrNotAStringLiteral))
}

func TestExpand_InterpolationWithArgumentsIsRejected(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{name: "format style", src: `#accessibleText("Total \(amount, format: .currency(code: "USD"))")`, msg: "more than one argument"},
		{name: "specifier", src: "Text(\"x\")\n#accessibleText(\"Speed \\(value, specifier: \"%.1f\") km/h\")", msg: "more than one argument"},
		{name: "leading label", src: `#accessibleText("Due \(date: deadline)")`, msg: `argument label "date"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Expand("View.swift", []byte(tt.src), rewrite.Rewriter{})
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryMacro), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Empty(t, res.Discoveries)
		})
	}
}

func TestExpand_InterpolationWithInnerCommasIsKept(t *testing.T) {
	res := expand(t, `#accessibleText("Sum \(a + b) of \(f(x, y)) is \(ok ? "yes" : "no")")`)

	assert.Equal(t,
		`AccessibleTextContainer.texts(key: "`+string(contentkey.Hash("Sum  of  is "))+`", a + b, f(x, y), ok ? "yes" : "no")`,
		string(res.Output))
	require.Len(t, res.Discoveries, 1)
	assert.Equal(t, "Sum {1} of {2} is {3}", res.Discoveries[0].Seed)
}

func TestExpand_SkipsRawStrings(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "quote inside", src: "let s = #\"say \"hi\"#\n"},
		{name: "double hash", src: "let s = ##\"a \"# #accessibleText(\"b\")\"##\n"},
		{name: "multi-line", src: "let s = #\"\"\"\n  \"\"\" still inside\n  \"\"\"#\n"},
		{name: "backtick span", src: "s := `say \"hi`\n"},
		{name: "rune literal", src: "q := '\"'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.src + `Text(#accessibleText("Hello, world!"))`
			res := expand(t, src)

			assert.Equal(t, tt.src+`Text(AccessibleTextContainer.texts(key: "`+helloKey+`"))`, string(res.Output))
			require.Len(t, res.Discoveries, 1)
			assert.Equal(t, "Hello, world!", res.Discoveries[0].Seed)
		})
	}
}

func TestExpand_UnterminatedRawString(t *testing.T) {
	_, err := Expand("View.swift", []byte("let s = #\"open\n#accessibleText(\"a\")"), rewrite.Rewriter{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryMacro))
}

func TestExpand_OneBadCallSiteDropsFileDiscoveries(t *testing.T) {
	src := "#accessibleText(\"ok\")\n#accessibleText(bad)\n#accessibleNavigationTitle(\"t\")\n"
	res, err := Expand("View.swift", []byte(src), rewrite.Rewriter{})
	require.Error(t, err)

	assert.True(t, errors.Is(err, ferrors.ErrNotAStringLiteral))
	assert.True(t, errors.Is(err, ferrors.ErrMissingContentArgument))
	assert.Empty(t, res.Discoveries)
	assert.Nil(t, res.Output)
}

func TestHasMacros(t *testing.T) {
	assert.True(t, HasMacros([]byte(`#accessibleText("x")`)))
	assert.True(t, HasMacros([]byte(`#accessibleNavigationTitle("x") {}`)))
	assert.False(t, HasMacros([]byte(`Text("x")`)))
}
