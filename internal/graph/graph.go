package graph

import (
	"strings"

	"go.uber.org/multierr"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/object"
)

// Commit is a fully resolved node of the commit graph.
type Commit struct {
	ID        object.ID
	Tree      object.ID
	Parents   []object.ID
	Author    string
	Committer string
	Message   string
	Files     object.FileMap
	Changes   []changeset.Change

	// Unresolved lists parents whose objects could not be read. They have
	// no node and no edge; their FileMap counts as empty.
	Unresolved []object.ID
}

// Subject returns the first line of the commit message. Both "\n" and
// "\r\n" end a line.
func (c *Commit) Subject() string {
	if i := strings.IndexAny(c.Message, "\r\n"); i >= 0 {
		return c.Message[:i]
	}
	return c.Message
}

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Edge connects a parent commit to one of its children.
type Edge struct {
	Parent object.ID
	Child  object.ID
}

// Graph is the commit DAG reachable from a starting commit.
type Graph struct {
	Start    object.ID
	Warnings []Warning

	nodes map[object.ID]*Commit
	order []object.ID
	edges []Edge
}

func newGraph(start object.ID) *Graph {
	return &Graph{
		Start: start,
		nodes: make(map[object.ID]*Commit),
	}
}

func (g *Graph) add(c *Commit) {
	g.nodes[c.ID] = c
	g.order = append(g.order, c.ID)
}

func (g *Graph) warn(w Warning) {
	g.Warnings = append(g.Warnings, w)
}

// Len returns the number of commits in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Node returns the commit with the given id.
func (g *Graph) Node(id object.ID) (*Commit, bool) {
	c, ok := g.nodes[id]
	return c, ok
}

// Nodes returns commits in first-visited order: the start commit first,
// then breadth-first through the parents.
func (g *Graph) Nodes() []*Commit {
	out := make([]*Commit, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns parent->child edges in discovery order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Roots returns commits without parents, in first-visited order.
// Commits whose parents are all unresolved are not roots.
func (g *Graph) Roots() []*Commit {
	var roots []*Commit
	for _, id := range g.order {
		if c := g.nodes[id]; len(c.Parents) == 0 {
			roots = append(roots, c)
		}
	}
	return roots
}

// Err combines all warnings into one error, or returns nil when there are none.
func (g *Graph) Err() error {
	errs := make([]error, len(g.Warnings))
	for i := range g.Warnings {
		errs[i] = g.Warnings[i]
	}
	return multierr.Combine(errs...)
}
