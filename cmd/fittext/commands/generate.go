package commands

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/fittext/internal/pipeline"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	JSON bool `name:"json" help:"Print the run report as JSON"`
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	cfg, err := root.loadConfig(false)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	report, err := pipeline.New(cfg).Generate(ctx)
	if err != nil {
		return err
	}
	return printReport(global, report, g.JSON)
}

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	JSON bool `name:"json" help:"Print the run report as JSON"`
}

func (c *CheckCmd) Run(global *Global, root *CLI) error {
	cfg, err := root.loadConfig(false)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	report, err := pipeline.New(cfg).Check(ctx)
	if report != nil && report.Diagnostics == 0 {
		for _, p := range report.OutOfDate {
			_, _ = fmt.Fprintf(global.out(), "out of date: %s\n", p)
		}
	}
	if err != nil {
		return err
	}
	return printReport(global, report, c.JSON)
}

func printReport(global *Global, report *pipeline.Report, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = fmt.Fprintln(global.out(), string(data))
		return err
	}
	_, err := fmt.Fprintln(global.out(), report.Summary())
	return err
}
