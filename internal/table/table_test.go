package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fittext/internal/contentkey"
	"git.home.luguber.info/inful/fittext/internal/literal"
	"git.home.luguber.info/inful/fittext/pkg/fit"
)

func TestSynchronize_SeedsNewKey(t *testing.T) {
	key := contentkey.Hash("Hello, world!")
	got := Synchronize(New(), VariantText, key, "Hello, world!")

	e, ok := got.Lookup(VariantText, key)
	require.True(t, ok)
	require.Equal(t, []string{"Hello, world!"}, e.Renderings)
	_, inTitles := got.Lookup(VariantTitle, key)
	require.False(t, inTitles)
}

func TestSynchronize_Idempotent(t *testing.T) {
	key := contentkey.Hash("Hi ! I am testing ")
	for _, base := range []Table{{}, New(), Synchronize(New(), VariantText, contentkey.Hash("other"), "other")} {
		once := Synchronize(base, VariantText, key, "Hi {1}! I am testing {2}")
		twice := Synchronize(once, VariantText, key, "Hi {1}! I am testing {2}")
		require.Equal(t, once, twice)
	}
}

func TestSynchronize_NeverOverwritesAuthorEdits(t *testing.T) {
	key := contentkey.Hash("Hello, world!")
	edited := Entry{Renderings: []string{"Hello, world!", "Hello!", "Hi"}, Source: "Hello, world!"}
	base := New()
	base.Texts[key] = edited

	for _, seed := range []string{"Hello, world!", "something else", ""} {
		got := Synchronize(base, VariantText, key, seed)
		e, _ := got.Lookup(VariantText, key)
		require.Equal(t, edited, e)
	}
}

func TestSynchronize_DoesNotMutateInput(t *testing.T) {
	base := New()
	_ = Synchronize(base, VariantTitle, contentkey.Hash("Settings"), "Settings")
	require.Zero(t, base.Len())
}

func TestSynchronize_VariantsAreSeparate(t *testing.T) {
	key := contentkey.Hash("Settings")
	got := Synchronize(New(), VariantText, key, "Settings")
	got = Synchronize(got, VariantTitle, key, "Settings")
	require.Len(t, got.Texts, 1)
	require.Len(t, got.Titles, 1)
}

func TestSynchronizeAll_AdditiveAndReportsNew(t *testing.T) {
	stale := contentkey.Hash("No longer used")
	base := New()
	base.Texts[stale] = Entry{Renderings: []string{"No longer used"}}

	k1 := contentkey.Hash("Hello, world!")
	k2 := contentkey.Hash("Hi ")
	discoveries := []Discovery{
		{Variant: VariantText, Key: k1, Seed: "Hello, world!", Origin: literal.Position{File: "A.swift", Line: 3, Column: 9}},
		{Variant: VariantText, Key: k1, Seed: "Hello, world!", Origin: literal.Position{File: "B.swift", Line: 7, Column: 1}},
		{Variant: VariantTitle, Key: k2, Seed: "Hi {1}"},
	}

	merged, added := SynchronizeAll(base, discoveries)
	require.Len(t, added, 2)
	require.Equal(t, "A.swift:3:9", merged.Texts[k1].Origin, "first call site wins")
	require.Contains(t, merged.Texts, stale, "unreferenced entries are retained")
	require.Equal(t, []string{"Hi {1}"}, merged.Titles[k2].Renderings)

	again, addedAgain := SynchronizeAll(merged, discoveries)
	require.Empty(t, addedAgain)
	require.Equal(t, merged, again)

	require.Equal(t, []StaleKey{{Variant: VariantText, Key: stale}}, Stale(merged, discoveries))
}

func TestTable_Catalog(t *testing.T) {
	key := contentkey.Hash("Hi ! I am testing ")
	tbl := New()
	tbl.Texts[key] = Entry{Renderings: []string{"Hi {1}! I am testing {2}", "Hi {1}!"}}

	cat, err := tbl.Catalog()
	require.NoError(t, err)
	require.Equal(t, "Hi Ada!", cat.FitText(string(key), fit.Constraints{Width: 12}, "Ada", "fit"))

	tbl.Titles[key] = Entry{Renderings: []string{"{x"}}
	_, err = tbl.Catalog()
	require.Error(t, err)
}

func TestKeys_Sorted(t *testing.T) {
	tbl := Synchronize(New(), VariantText, contentkey.Hash("b"), "b")
	tbl = Synchronize(tbl, VariantText, contentkey.Hash("a"), "a")
	keys := tbl.Keys(VariantText)
	require.Len(t, keys, 2)
	require.Less(t, string(keys[0]), string(keys[1]))
}
