package aggregation

import (
	"strings"
	"time"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/graph"
	"github.com/masmgr/commitgraph-go/internal/object"
)

// CommitMetrics holds change-set diffusion metrics for a single commit.
type CommitMetrics struct {
	ID             string
	AuthorName     string
	AuthorEmail    string
	AuthorDate     time.Time // zero when the author header has no timestamp
	Subject        string
	Parents        int
	Added          int
	Modified       int
	Removed        int
	DirectoryCount int // ND: distinct directories touched
	SubsystemCount int // NS: distinct top-level directories touched
}

// FileCount returns the number of paths in the change set.
func (c *CommitMetrics) FileCount() int {
	return c.Added + c.Modified + c.Removed
}

// CalculateCommit computes metrics for one resolved commit.
func CalculateCommit(c *graph.Commit) CommitMetrics {
	directories := make(map[string]struct{})
	subsystems := make(map[string]struct{})

	counts := changeset.Counts(c.Changes)
	for _, change := range c.Changes {
		dir, subsystem := extractPathComponents(change.Path)
		if dir != "" {
			directories[dir] = struct{}{}
		}
		if subsystem != "" {
			subsystems[subsystem] = struct{}{}
		}
	}

	subsystemCount := len(subsystems)
	if subsystemCount == 0 && len(c.Changes) > 0 {
		subsystemCount = 1
	}

	author, _ := object.ParseSignature(c.Author)

	return CommitMetrics{
		ID:             c.ID.String(),
		AuthorName:     author.Name,
		AuthorEmail:    author.Email,
		AuthorDate:     author.When,
		Subject:        truncateMessage(c.Subject()),
		Parents:        len(c.Parents),
		Added:          counts[changeset.Added],
		Modified:       counts[changeset.Modified],
		Removed:        counts[changeset.Removed],
		DirectoryCount: len(directories),
		SubsystemCount: subsystemCount,
	}
}

// extractPathComponents extracts directory path and subsystem from a file path.
// Subsystem is the first directory component (e.g., "src", "tests", "docs").
func extractPathComponents(path string) (directory, subsystem string) {
	if path == "" {
		return "", ""
	}

	normalized := strings.ReplaceAll(path, "\\", "/")
	lastSlash := strings.LastIndex(normalized, "/")
	if lastSlash <= 0 {
		return "", ""
	}

	directory = normalized[:lastSlash]
	subsystem, _, _ = strings.Cut(normalized, "/")
	return directory, subsystem
}

// truncateMessage keeps the first line, max 100 chars.
func truncateMessage(message string) string {
	firstLine, _, _ := strings.Cut(message, "\n")
	firstLine = strings.TrimRight(firstLine, "\r")
	if len(firstLine) > 100 {
		return firstLine[:97] + "..."
	}
	return firstLine
}
