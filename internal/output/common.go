package output

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/graph"
)

const (
	reportDateTimeLayout = "2006-01-02T15:04:05"
	commitDateLayout     = "2006-01-02"
)

// formatDate renders t with layout, or "-" when the commit carried no date.
func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}

func createWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, err
		}
		return file, file, nil
	}
	return os.Stdout, nil, nil
}

// visibleChanges applies the render filter and the per-node file limit.
// hidden is the number of filtered changes dropped by the limit.
func visibleChanges(c *graph.Commit, opts RenderOptions) (shown []changeset.Change, hidden int) {
	changes := opts.Filter.Apply(c.Changes)
	if opts.MaxFiles > 0 && len(changes) > opts.MaxFiles {
		return changes[:opts.MaxFiles], len(changes) - opts.MaxFiles
	}
	return changes, 0
}

// changeList renders changes as "path (kind), ...".
func changeList(changes []changeset.Change, hidden int) string {
	parts := make([]string, 0, len(changes)+1)
	for _, ch := range changes {
		parts = append(parts, ch.Path+" ("+ch.Kind.String()+")")
	}
	if hidden > 0 {
		parts = append(parts, "... +"+strconv.Itoa(hidden)+" more")
	}
	return strings.Join(parts, ", ")
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}
