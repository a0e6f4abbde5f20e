package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/pipeline"
	"git.home.luguber.info/inful/fittext/internal/source"
)

// ExpandCmd implements the 'expand' command. It never touches the table.
type ExpandCmd struct {
	File string `arg:"" help:"Source file to expand" type:"existingfile"`
	Keys bool   `help:"List the discovered content keys instead of the rewritten source"`
}

func (e *ExpandCmd) Run(global *Global, root *CLI) error {
	cfg, err := root.loadConfig(true)
	if err != nil {
		return err
	}
	// #nosec G304 - path given on the command line
	src, err := os.ReadFile(e.File)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "read source file").
			WithContext("path", e.File).Build()
	}

	res, err := source.Expand(e.File, src, pipeline.New(cfg).Rewriter())
	if err != nil {
		return err
	}
	if e.Keys {
		for _, d := range res.Discoveries {
			_, _ = fmt.Fprintf(global.out(), "%s\t%s\t%s\t%q\n", d.Origin, d.Variant, d.Key, d.Seed)
		}
		return nil
	}
	_, err = global.out().Write(res.Output)
	return err
}
