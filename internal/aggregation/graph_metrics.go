// Package aggregation summarises a commit graph for reporting.
package aggregation

import (
	"sort"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/graph"
)

// PathCount is a path (or directory) with the number of commits touching it.
type PathCount struct {
	Path    string
	Commits int
}

// GraphMetrics holds whole-graph totals.
type GraphMetrics struct {
	Commits    int
	Edges      int
	Merges     int
	Roots      int
	Unresolved int
	Warnings   int

	Added    int
	Modified int
	Removed  int

	DistinctPaths int
	TopPaths      []PathCount
	Subsystems    []PathCount

	PerCommit []CommitMetrics
}

// TotalChanges returns the number of (path, kind) entries over all commits.
func (m *GraphMetrics) TotalChanges() int {
	return m.Added + m.Modified + m.Removed
}

// Calculate summarises g. TopPaths is limited to top entries; top <= 0 keeps all.
func Calculate(g *graph.Graph, top int) GraphMetrics {
	m := GraphMetrics{
		Commits:  g.Len(),
		Edges:    len(g.Edges()),
		Roots:    len(g.Roots()),
		Warnings: len(g.Warnings),
	}

	paths := make(map[string]int)
	subsystems := make(map[string]int)

	for _, c := range g.Nodes() {
		if c.IsMerge() {
			m.Merges++
		}
		m.Unresolved += len(c.Unresolved)

		cm := CalculateCommit(c)
		m.PerCommit = append(m.PerCommit, cm)
		m.Added += cm.Added
		m.Modified += cm.Modified
		m.Removed += cm.Removed

		touchedPaths := make(map[string]struct{})
		touchedSubsystems := make(map[string]struct{})
		for _, change := range c.Changes {
			touchedPaths[change.Path] = struct{}{}
			if _, subsystem := extractPathComponents(change.Path); subsystem != "" {
				touchedSubsystems[subsystem] = struct{}{}
			}
		}
		for p := range touchedPaths {
			paths[p]++
		}
		for s := range touchedSubsystems {
			subsystems[s]++
		}
	}

	m.DistinctPaths = len(paths)
	m.TopPaths = limitTop(rank(paths), top)
	m.Subsystems = rank(subsystems)
	return m
}

// KindTotal returns the graph-wide count for one change kind.
func (m *GraphMetrics) KindTotal(kind changeset.Kind) int {
	switch kind {
	case changeset.Added:
		return m.Added
	case changeset.Modified:
		return m.Modified
	case changeset.Removed:
		return m.Removed
	default:
		return 0
	}
}

// rank sorts counts descending, ties broken by path.
func rank(counts map[string]int) []PathCount {
	out := make([]PathCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, PathCount{Path: p, Commits: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}
