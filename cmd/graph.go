package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitgraph-go/internal/output"
)

// GraphCmd returns the graph command.
func GraphCmd() *cli.Command {
	return &cli.Command{
		Name:    "graph",
		Aliases: []string{"g"},
		Usage:   "Render the commit graph reachable from a reference",
		Flags:   graphFlags(),
		Action:  graphAction,
	}
}

func graphAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		opts, err := OutputOptions(ctx.Config)
		if err != nil {
			return err
		}
		return output.NewGraphWriter(opts.Format).Write(ctx.Report(), opts)
	})
}
