package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fittext/cmd/fittext/commands"
	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("fittext"),
		kong.Description("Rewrites accessible text macros into content-keyed accessor calls and keeps the candidate table in sync."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Out: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
