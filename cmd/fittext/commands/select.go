package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/fittext/internal/contentkey"
	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/table"
	"git.home.luguber.info/inful/fittext/pkg/fit"
)

// SelectCmd implements the 'select' command: it renders the candidates of a
// key and marks the one the runtime would pick.
type SelectCmd struct {
	Key   string   `arg:"" help:"Content key (full hex or a unique prefix)"`
	Width int      `short:"w" help:"Available width in cells" default:"40"`
	Lines int      `short:"l" help:"Maximum number of lines" default:"1"`
	Scale float64  `help:"Text scale factor (1.0 = default size)" default:"1"`
	Title bool     `help:"Look the key up in the navigation title section"`
	Args  []string `short:"a" name:"arg" help:"Interpolation values in order"`
}

func (s *SelectCmd) Run(global *Global, root *CLI) error {
	cfg, err := root.loadConfig(true)
	if err != nil {
		return err
	}
	tbl, err := table.NewStore(cfg.TablePath()).Load(context.Background())
	if err != nil {
		return err
	}
	variant := table.VariantText
	if s.Title {
		variant = table.VariantTitle
	}
	key, err := resolveKey(tbl, variant, s.Key)
	if err != nil {
		return err
	}
	catalog, err := tbl.Catalog()
	if err != nil {
		return errors.WrapError(err, errors.CategoryTable, "compile candidate table").
			WithContext("path", cfg.TablePath()).Build()
	}
	args := make([]any, len(s.Args))
	for i, a := range s.Args {
		args[i] = a
	}
	rendered := catalog.Texts(string(key), args...)
	if s.Title {
		rendered = catalog.Titles(string(key), args...)
	}
	cons := fit.Constraints{Width: s.Width, Lines: s.Lines, Scale: s.Scale}
	fits := fit.WidthFits(cons)
	chosen := fit.SelectIndex(rendered, fits)
	if chosen < 0 && len(rendered) > 0 {
		chosen = len(rendered) - 1
	}

	out := global.out()
	_, _ = fmt.Fprintf(out, "%s %s (width %d, lines %d, scale %.2f)\n", variant, key.Short(), s.Width, s.Lines, s.Scale)
	for i, r := range rendered {
		marker := " "
		switch {
		case i == chosen:
			marker = ">"
		case !fits(r):
			marker = "x"
		}
		_, _ = fmt.Fprintf(out, "%s %d. %s (%d cells)\n", marker, i+1, r, fit.Cells(r))
	}
	return nil
}

// resolveKey accepts a full key or an unambiguous prefix of one.
func resolveKey(t table.Table, v table.Variant, prefix string) (contentkey.ContentKey, error) {
	if k, err := contentkey.Parse(prefix); err == nil {
		if _, ok := t.Lookup(v, k); ok {
			return k, nil
		}
	}
	var match []contentkey.ContentKey
	for _, k := range t.Keys(v) {
		if len(prefix) > 0 && len(prefix) <= len(k) && string(k[:len(prefix)]) == prefix {
			match = append(match, k)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return "", errors.NewError(errors.CategoryNotFound, fmt.Sprintf("no %s entry for key %q", v, prefix)).
			UserAction().Build()
	default:
		return "", errors.ValidationError(fmt.Sprintf("key prefix %q is ambiguous (%d matches)", prefix, len(match))).
			UserAction().Build()
	}
}
