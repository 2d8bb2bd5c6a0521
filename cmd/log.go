package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/graph"
	"github.com/masmgr/commitgraph-go/internal/object"
)

// LogCmd returns the log command.
func LogCmd() *cli.Command {
	return &cli.Command{
		Name:    "log",
		Aliases: []string{"l"},
		Usage:   "List commits with their change sets in traversal order",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
		),
		Action: logAction,
	}
}

func logAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		out := io.Writer(os.Stdout)
		if path := ctx.Config.Output.Path; path != "" {
			file, err := os.Create(path)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}

		filter := ctx.Config.Filters.Filter()
		for _, commit := range ctx.Graph.Nodes() {
			writeLogEntry(out, commit, filter)
		}
		return nil
	})
}

// gitDateLayout is the default date format of git log.
const gitDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

var kindLetters = map[changeset.Kind]string{
	changeset.Added:    "A",
	changeset.Modified: "M",
	changeset.Removed:  "D",
}

// writeLogEntry prints a commit in the layout of git log --name-status.
func writeLogEntry(w io.Writer, c *graph.Commit, filter changeset.Filter) {
	color.New(color.FgYellow).Fprintf(w, "commit %s\n", c.ID)
	if c.IsMerge() {
		shorts := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			shorts[i] = p.Short()
		}
		fmt.Fprintf(w, "Merge: %s\n", strings.Join(shorts, " "))
	}
	if sig, ok := object.ParseSignature(c.Author); ok {
		fmt.Fprintf(w, "Author: %s <%s>\n", sig.Name, sig.Email)
		if !sig.When.IsZero() {
			fmt.Fprintf(w, "Date:   %s\n", sig.When.Format(gitDateLayout))
		}
	} else if c.Author != "" {
		fmt.Fprintf(w, "Author: %s\n", c.Author)
	}
	for _, u := range c.Unresolved {
		color.New(color.FgRed).Fprintf(w, "Unresolved parent: %s\n", u)
	}
	fmt.Fprintln(w)
	for _, line := range strings.Split(c.Message, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	fmt.Fprintln(w)

	changes := filter.Apply(c.Changes)
	for _, ch := range changes {
		fmt.Fprintf(w, "%s\t%s\n", kindLetters[ch.Kind], ch.Path)
	}
	if len(changes) > 0 {
		fmt.Fprintln(w)
	}
}
