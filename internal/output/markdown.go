package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/commitgraph-go/internal/aggregation"
	"github.com/masmgr/commitgraph-go/internal/changeset"
)

// MarkdownGraphWriter writes a Markdown document embedding the diagram.
type MarkdownGraphWriter struct{}

// Write outputs the graph report as Markdown.
func (w *MarkdownGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	out, file, err := createWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	g := report.Graph
	metrics := aggregation.Calculate(g, options.Top)
	diagram := RenderMermaid(g, options.Render)

	// Header
	fmt.Fprintln(out, "# Commit Graph")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	if report.Ref != "" {
		fmt.Fprintf(out, "**Reference:** `%s`\n\n", report.Ref)
	}
	fmt.Fprintf(out, "**Start:** `%s`\n\n", g.Start)
	fmt.Fprintf(out, "**Generated:** %s\n\n", report.GeneratedAt.Format(reportDateTimeLayout))
	fmt.Fprintf(out, "**Commits:** %d | **Edges:** %d | **Merges:** %d | **Roots:** %d\n\n",
		metrics.Commits, metrics.Edges, metrics.Merges, metrics.Roots)
	fmt.Fprintf(out, "**Changes:** %d added, %d modified, %d removed\n\n",
		metrics.KindTotal(changeset.Added), metrics.KindTotal(changeset.Modified), metrics.KindTotal(changeset.Removed))

	// Diagram
	fmt.Fprintln(out, "```mermaid")
	fmt.Fprint(out, diagram)
	fmt.Fprintln(out, "```")
	fmt.Fprintln(out)
	if options.LiveURL {
		link, err := LiveEditorURL(options.Endpoint, diagram)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[Open in Mermaid Live Editor](%s)\n\n", link)
	}

	// Commit table
	fmt.Fprintln(out, "## Commits")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| # | Commit | Date | Author | Subject | Parents | Added | Modified | Removed |")
	fmt.Fprintln(out, "|---|--------|------|--------|---------|---------|-------|----------|---------|")
	for i, cm := range metrics.PerCommit {
		fmt.Fprintf(out, "| %d | `%s` | %s | %s | %s | %d | %d | %d | %d |\n",
			i+1, cm.ID[:7], formatDate(cm.AuthorDate, commitDateLayout), escapeMarkdown(cm.AuthorName),
			escapeMarkdown(cm.Subject), cm.Parents, cm.Added, cm.Modified, cm.Removed)
	}

	if len(metrics.TopPaths) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Most Changed Paths")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| Path | Commits |")
		fmt.Fprintln(out, "|------|---------|")
		for _, p := range metrics.TopPaths {
			fmt.Fprintf(out, "| `%s` | %d |\n", p.Path, p.Commits)
		}
	}

	if len(g.Warnings) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Warnings")
		fmt.Fprintln(out)
		for _, warning := range g.Warnings {
			fmt.Fprintf(out, "- %s\n", escapeMarkdown(warning.Error()))
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
