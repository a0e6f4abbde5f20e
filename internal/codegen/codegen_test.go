package codegen

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fittext/internal/contentkey"
	ferrors "git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/table"
)

const (
	helloKey    = contentkey.ContentKey("315f5bdb76d078c43b8ac0064e4a0164612b1fce77c869345bfc94c75894edd3")
	settingsKey = contentkey.ContentKey("74a883a037bc227f91891ab654a753d3a99f31ab06ae5b5d2b6e594a692b41f8")
	greetKey    = contentkey.ContentKey("7c5e3652067d9e3ed721d1ddc4a69fbb1a87ea8bcbcd3964764e5adac9c456ee")
)

func sampleTable() table.Table {
	t := table.New()
	t.Texts[helloKey] = table.Entry{Renderings: []string{"Hello, world!", "Hello!", "Hi"}}
	t.Texts[greetKey] = table.Entry{Renderings: []string{"Hi {1}! I am testing {2}", "100% {2}"}}
	t.Titles[settingsKey] = table.Entry{Renderings: []string{"Settings", "Prefs"}}
	return t
}

func TestGenerate_Swift(t *testing.T) {
	out, err := Generate(sampleTable(), Options{TableName: "accessible-text.yaml"})
	require.NoError(t, err)

	want := `// Code generated by fittext from accessible-text.yaml. DO NOT EDIT.
// Edit the candidate table and run ` + "`fittext generate`" + ` again.

import Foundation
import SwiftUI
import AccessibleText

enum AccessibleTextContainer {
    static func texts(key: String, _ args: Any...) -> AccessibleTexts {
        let values = formatArguments(args)
        switch key {
        case "315f5bdb76d078c43b8ac0064e4a0164612b1fce77c869345bfc94c75894edd3":
            return [
                Text(String(format: "Hello, world!", arguments: values)),
                Text(String(format: "Hello!", arguments: values)),
                Text(String(format: "Hi", arguments: values)),
            ]
        case "7c5e3652067d9e3ed721d1ddc4a69fbb1a87ea8bcbcd3964764e5adac9c456ee":
            return [
                Text(String(format: "Hi %1$@! I am testing %2$@", arguments: values)),
                Text(String(format: "100%% %2$@", arguments: values)),
            ]
        default:
            return []
        }
    }

    static func navigationTitles<Content: View>(key: String, _ args: Any..., content: () -> Content) -> AccessibleNavigationTitles<Content> {
        let values = formatArguments(args)
        switch key {
        case "74a883a037bc227f91891ab654a753d3a99f31ab06ae5b5d2b6e594a692b41f8":
            return AccessibleNavigationTitles([
                Text(String(format: "Settings", arguments: values)),
                Text(String(format: "Prefs", arguments: values)),
            ], content: content)
        default:
            return AccessibleNavigationTitles([], content: content)
        }
    }

    // Every slot is %N$@, so each argument is passed as its description.
    private static func formatArguments(_ args: [Any]) -> [CVarArg] {
        args.map { String(describing: $0) as NSString }
    }
}
`
	assert.Equal(t, want, string(out))
}

func TestGenerate_SwiftEscapes(t *testing.T) {
	tbl := table.New()
	tbl.Texts[helloKey] = table.Entry{Renderings: []string{"Say \"{{hi}}\"\n\\(x)"}}

	out, err := Generate(tbl, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `Text(String(format: "Say \"{hi}\"\n\\(x)", arguments: values)),`)
}

func TestGenerate_EmptyTable(t *testing.T) {
	out, err := Generate(table.New(), Options{Container: "Strings", TextAccessor: "text", TitleAccessor: "title"})
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "enum Strings {")
	assert.Contains(t, s, "switch key {\n        default:\n            return []")
	assert.Contains(t, s, "static func title<Content: View>")
}

func TestGenerate_Deterministic(t *testing.T) {
	for _, lang := range []Language{Swift, Go} {
		a, err := Generate(sampleTable(), Options{Language: lang})
		require.NoError(t, err)
		b, err := Generate(sampleTable(), Options{Language: lang})
		require.NoError(t, err)
		assert.Equal(t, a, b, lang)
	}
}

func TestGenerate_Go(t *testing.T) {
	out, err := Generate(sampleTable(), Options{Language: Go, Package: "strings_gen", TableName: "accessible-text.yaml"})
	require.NoError(t, err)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "gen.go", out, parser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "strings_gen", f.Name.Name)

	s := string(out)
	assert.Contains(t, s, "// Code generated by fittext from accessible-text.yaml. DO NOT EDIT.")
	assert.Contains(t, s, "var AccessibleTextContainer = fit.NewCatalog(textRenderings, titleRenderings)")
	assert.Contains(t, s, "\t\""+string(greetKey)+"\": {\n\t\t\"Hi {1}! I am testing {2}\",\n\t\t\"100% {2}\",\n\t},")
	assert.Contains(t, s, "func Texts(key string, args ...any) *fit.Container[string] {")
	assert.Contains(t, s, "func NavigationTitles(key string, content func(), args ...any) *fit.Titled {")
}

func TestGenerate_SwiftArgumentsAreBoxed(t *testing.T) {
	out, err := Generate(sampleTable(), Options{})
	require.NoError(t, err)

	s := string(out)
	assert.NotContains(t, s, "CVarArg...", "accessors accept any value, not only object-typed varargs")
	assert.Contains(t, s, "static func texts(key: String, _ args: Any...) -> AccessibleTexts {\n        let values = formatArguments(args)")
	assert.Contains(t, s, "args.map { String(describing: $0) as NSString }")
	assert.NotContains(t, s, "%1$d", "slots are always object specifiers")
}

func TestGenerate_InvalidRendering(t *testing.T) {
	tbl := table.New()
	tbl.Texts[helloKey] = table.Entry{Renderings: []string{"{oops"}}

	_, err := Generate(tbl, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ferrors.ErrMalformedExistingTable)
}

func TestGenerate_UnsupportedLanguage(t *testing.T) {
	_, err := Generate(table.New(), Options{Language: "kotlin"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryCodegen))
}
