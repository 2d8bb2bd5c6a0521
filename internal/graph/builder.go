// Package graph reconstructs the commit DAG reachable from a starting
// commit by reading objects directly from a loose object store.
package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/object"
)

// Options configures a Builder.
type Options struct {
	// Workers bounds concurrent commit decoding. Values below 1 mean 1.
	Workers int
	// MaxTreeDepth bounds sub-tree nesting; 0 selects object.DefaultMaxTreeDepth.
	MaxTreeDepth int
	// MaxCommits stops the walk after this many commits; 0 means unlimited.
	MaxCommits int
	// Logger receives diagnostic output. Nil disables logging.
	Logger *zap.Logger
	// OnDecode is called once for every commit object the builder decodes.
	// With Workers > 1 it is called from several goroutines.
	OnDecode func(id object.ID)
}

// Builder walks commit ancestry and assembles a Graph.
type Builder struct {
	reader object.Reader
	opts   Options
	log    *zap.Logger
}

// NewBuilder creates a builder reading objects from r.
func NewBuilder(r object.Reader, opts Options) *Builder {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{reader: r, opts: opts, log: log}
}

// decoded is the per-commit output of a worker.
type decoded struct {
	commit   *object.Commit
	files    object.FileMap
	warnings []error
	err      error
}

// Build walks the ancestry of start breadth-first. Every commit id is
// decoded at most once however many children reference it. Unreadable
// ancestors become warnings on the returned graph; an unreadable start
// commit or a parentage cycle is an error.
func (b *Builder) Build(ctx context.Context, start object.ID) (*Graph, error) {
	g := newGraph(start)
	// Trees are cached per build; no state outlives the call.
	trees := object.NewTreeDecoder(b.reader, b.opts.MaxTreeDepth)

	seen := map[object.ID]bool{start: true}
	frontier := []object.ID{start}
	var candidates []Edge

	for level := 0; len(frontier) > 0; level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frontier = b.truncate(g, frontier)
		if len(frontier) == 0 {
			break
		}

		results, err := b.decodeLevel(ctx, trees, frontier)
		if err != nil {
			return nil, err
		}

		var next []object.ID
		for i, id := range frontier {
			r := results[i]
			if r.err != nil {
				if id == start {
					return nil, fmt.Errorf("read start commit %s: %w", id, r.err)
				}
				b.log.Warn("commit unavailable", zap.String("id", id.String()), zap.Error(r.err))
				g.warn(Warning{Object: id, Err: r.err})
				continue
			}

			c := r.commit
			g.add(&Commit{
				ID:        c.ID,
				Tree:      c.Tree,
				Parents:   c.Parents,
				Author:    c.Author,
				Committer: c.Committer,
				Message:   c.Message,
				Files:     r.files,
			})
			for _, w := range r.warnings {
				b.log.Warn("tree incomplete", zap.String("commit", id.String()), zap.Error(w))
				g.warn(Warning{Commit: id, Object: c.Tree, Err: w})
			}
			for _, p := range c.Parents {
				candidates = append(candidates, Edge{Parent: p, Child: id})
				if !seen[p] {
					seen[p] = true
					next = append(next, p)
				}
			}
		}

		b.log.Debug("decoded level",
			zap.Int("level", level),
			zap.Int("commits", len(frontier)),
			zap.Int("total", g.Len()),
		)
		frontier = next
	}

	b.link(g, candidates)
	if err := checkAcyclic(g); err != nil {
		return nil, err
	}
	b.computeChanges(g)

	return g, nil
}

// truncate enforces MaxCommits, recording a warning for every dropped commit.
func (b *Builder) truncate(g *Graph, frontier []object.ID) []object.ID {
	if b.opts.MaxCommits <= 0 {
		return frontier
	}
	room := b.opts.MaxCommits - g.Len()
	if room < 0 {
		room = 0
	}
	if len(frontier) <= room {
		return frontier
	}
	for _, id := range frontier[room:] {
		g.warn(Warning{Object: id, Err: fmt.Errorf("%w: commit %s not visited (limit %d)", ErrHistoryTruncated, id.Short(), b.opts.MaxCommits)})
	}
	return frontier[:room]
}

// decodeLevel decodes one breadth-first level with at most Workers
// goroutines. Each worker writes only its own slot, so results come back
// in frontier order and no shared state is mutated.
func (b *Builder) decodeLevel(ctx context.Context, trees *object.TreeDecoder, frontier []object.ID) ([]decoded, error) {
	results := make([]decoded, len(frontier))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.opts.Workers)
	for i, id := range frontier {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = b.decode(trees, id)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Builder) decode(trees *object.TreeDecoder, id object.ID) decoded {
	if b.opts.OnDecode != nil {
		b.opts.OnDecode(id)
	}

	c, err := object.ReadCommit(b.reader, id)
	if err != nil {
		return decoded{err: err}
	}

	var warnings []error
	files, err := trees.Flatten(c.Tree, func(w error) { warnings = append(warnings, w) })
	if err != nil {
		warnings = append(warnings, fmt.Errorf("tree %s: %w", c.Tree.Short(), err))
		files = object.FileMap{}
	}
	return decoded{commit: c, files: files, warnings: warnings}
}

// link keeps edges whose parent resolved and records the others as unresolved.
func (b *Builder) link(g *Graph, candidates []Edge) {
	added := make(map[Edge]bool, len(candidates))
	for _, e := range candidates {
		if added[e] {
			continue
		}
		added[e] = true

		if _, ok := g.nodes[e.Parent]; ok {
			g.edges = append(g.edges, e)
			continue
		}
		child := g.nodes[e.Child]
		child.Unresolved = append(child.Unresolved, e.Parent)
	}
}

// computeChanges runs once every FileMap is known, so each commit can be
// compared with all of its parents.
func (b *Builder) computeChanges(g *Graph) {
	for _, id := range g.order {
		c := g.nodes[id]
		parents := make([]object.FileMap, len(c.Parents))
		for i, p := range c.Parents {
			if pc, ok := g.nodes[p]; ok {
				parents[i] = pc.Files
			}
		}
		c.Changes = changeset.Compute(c.Files, parents)
	}
}

// checkAcyclic runs Kahn's algorithm over the resolved edges.
func checkAcyclic(g *Graph) error {
	indegree := make(map[object.ID]int, len(g.nodes))
	children := make(map[object.ID][]object.ID, len(g.nodes))
	for _, e := range g.edges {
		indegree[e.Child]++
		children[e.Parent] = append(children[e.Parent], e.Child)
	}

	queue := make([]object.ID, 0, len(g.order))
	for _, id := range g.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, child := range children[id] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if visited != len(g.order) {
		for _, id := range g.order {
			if indegree[id] > 0 {
				return fmt.Errorf("%w at commit %s", ErrCycleDetected, id)
			}
		}
		return ErrCycleDetected
	}
	return nil
}
