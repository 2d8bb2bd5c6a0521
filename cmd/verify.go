package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// VerifyCmd returns the verify command.
func VerifyCmd() *cli.Command {
	return &cli.Command{
		Name:   "verify",
		Usage:  "Cross-check decoded change sets against go-git's tree diff",
		Flags:  commonFlags(),
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		result, err := ctx.Repo.CrossCheck(c.Context, ctx.Graph)
		if err != nil {
			return err
		}

		w := c.App.Writer
		fmt.Fprintf(w, "Checked %d commit(s), skipped %d with incomplete history.\n", result.Checked, result.Skipped)
		if len(result.Mismatches) == 0 {
			color.New(color.FgGreen).Fprintln(w, "All change sets match.")
			return nil
		}

		red := color.New(color.FgRed)
		for _, m := range result.Mismatches {
			red.Fprintf(w, "commit %s\n", m.Commit)
			for _, ch := range m.Missing {
				fmt.Fprintf(w, "  missing %s (%s)\n", ch.Path, ch.Kind)
			}
			for _, ch := range m.Extra {
				fmt.Fprintf(w, "  extra   %s (%s)\n", ch.Path, ch.Kind)
			}
		}
		return fmt.Errorf("%d commit(s) differ from go-git", len(result.Mismatches))
	})
}
