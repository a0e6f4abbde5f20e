package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/fittext/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file"`
}

func (i *InitCmd) Run(global *Global, root *CLI) error {
	if i.Output != "" {
		return RunInit(global, filepath.Join(i.Output, config.DefaultPath), i.Force)
	}
	return RunInit(global, root.Config, i.Force)
}

func RunInit(global *Global, configPath string, force bool) error {
	_, _ = fmt.Fprintf(global.out(), "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(global.out(), "initialized successfully")
	return nil
}
