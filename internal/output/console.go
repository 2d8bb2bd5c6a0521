package output

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/masmgr/commitgraph-go/internal/aggregation"
	"github.com/masmgr/commitgraph-go/internal/changeset"
)

// ConsoleGraphWriter writes a human-readable summary to the console.
type ConsoleGraphWriter struct{}

// Write outputs a colored summary of the graph.
func (w *ConsoleGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	out, file, err := createWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	g := report.Graph
	metrics := aggregation.Calculate(g, options.Top)

	color.New(color.FgGreen).Fprintln(out, "Commit Graph")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	if report.Ref != "" {
		fmt.Fprintf(out, "Reference: %s (%s)\n", report.Ref, g.Start.Short())
	} else {
		fmt.Fprintf(out, "Start: %s\n", g.Start)
	}
	fmt.Fprintf(out, "Commits: %d  Edges: %d  Merges: %d  Roots: %d\n",
		metrics.Commits, metrics.Edges, metrics.Merges, metrics.Roots)
	fmt.Fprintf(out, "Changes: %s %s %s\n\n",
		color.GreenString("+%d", metrics.KindTotal(changeset.Added)),
		color.YellowString("~%d", metrics.KindTotal(changeset.Modified)),
		color.RedString("-%d", metrics.KindTotal(changeset.Removed)))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCommit\tDate\tAuthor\tParents\tAdded\tModified\tRemoved\tSubject")
	for i, cm := range metrics.PerCommit {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			i+1, cm.ID[:7], formatDate(cm.AuthorDate, commitDateLayout), truncateMessage(cm.AuthorName, 20),
			cm.Parents, cm.Added, cm.Modified, cm.Removed, truncateMessage(cm.Subject, 50))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(metrics.TopPaths) > 0 {
		fmt.Fprintln(out)
		color.New(color.FgGreen).Fprintln(out, "Most changed paths")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, p := range metrics.TopPaths {
			fmt.Fprintf(tw, "%s\t%d\n", p.Path, p.Commits)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(g.Warnings) > 0 {
		fmt.Fprintln(out)
		warn := color.New(color.FgYellow)
		warn.Fprintf(out, "%d warning(s):\n", len(g.Warnings))
		for _, warning := range g.Warnings {
			warn.Fprintf(out, "  %s\n", warning.Error())
		}
	}

	return nil
}
