package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fittext/internal/config"
)

// Global is shared state passed to every command.
type Global struct {
	// Out receives command output meant for the user (reports, previews).
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"fittext.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Rewrite call sites, merge new keys into the table and regenerate the accessor"`
	Check    CheckCmd    `cmd:"" help:"Fail when generate would change anything (for CI)"`
	Expand   ExpandCmd   `cmd:"" help:"Print the rewritten form of one source file"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever sources or the table change"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Select   SelectCmd   `cmd:"" help:"Preview which candidate rendering fits a given width"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configured file. When optional is set and the file
// does not exist the defaults are used.
func (c *CLI) loadConfig(optional bool) (*config.Config, error) {
	if optional {
		if _, err := os.Stat(c.Config); errors.Is(err, os.ErrNotExist) {
			slog.Debug("No configuration file, using defaults", "path", c.Config)
			return config.Parse([]byte("version: \"" + config.Version + "\"\n"))
		}
	}
	return config.Load(c.Config)
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
