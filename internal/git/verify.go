package git

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	gitobject "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/masmgr/commitgraph-go/internal/changeset"
	"github.com/masmgr/commitgraph-go/internal/graph"
	"github.com/masmgr/commitgraph-go/internal/object"
)

// Mismatch is a commit whose decoded change set differs from go-git's.
type Mismatch struct {
	Commit object.ID
	// Missing are changes go-git reports that the graph lacks.
	Missing []changeset.Change
	// Extra are changes the graph reports that go-git does not.
	Extra []changeset.Change
}

// CheckResult summarises a cross-check run.
type CheckResult struct {
	Checked    int
	Skipped    int
	Mismatches []Mismatch
}

// CrossCheck recomputes every commit's change set with go-git's tree
// diff and compares it with the graph. Commits with unresolved parents
// or incomplete trees are skipped since their change sets are partial
// by construction.
func (r *Repository) CrossCheck(ctx context.Context, g *graph.Graph) (*CheckResult, error) {
	incomplete := make(map[object.ID]bool)
	for _, w := range g.Warnings {
		if w.Commit != "" {
			incomplete[w.Commit] = true
		}
	}

	result := &CheckResult{}
	for _, c := range g.Nodes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(c.Unresolved) > 0 || incomplete[c.ID] {
			result.Skipped++
			continue
		}

		want, err := r.referenceChanges(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("cross-check %s: %w", c.ID.Short(), err)
		}
		result.Checked++

		if m := compareChanges(c.ID, want, c.Changes); m != nil {
			result.Mismatches = append(result.Mismatches, *m)
		}
	}
	return result, nil
}

// referenceChanges is the union of go-git tree diffs against each parent.
func (r *Repository) referenceChanges(ctx context.Context, c *graph.Commit) ([]changeset.Change, error) {
	tree, err := r.tree(c.Tree)
	if err != nil {
		return nil, err
	}

	parents := []*gitobject.Tree{nil}
	if len(c.Parents) > 0 {
		parents = parents[:0]
		for _, p := range c.Parents {
			pc, err := r.commit(p)
			if err != nil {
				return nil, fmt.Errorf("parent %s: %w", p.Short(), err)
			}
			pt, err := pc.Tree()
			if err != nil {
				return nil, err
			}
			parents = append(parents, pt)
		}
	}

	set := make(map[changeset.Change]struct{})
	for _, parent := range parents {
		diff, err := gitobject.DiffTreeWithOptions(ctx, parent, tree, &gitobject.DiffTreeOptions{})
		if err != nil {
			return nil, err
		}
		for _, ch := range diff {
			change, ok, err := toChange(ch)
			if err != nil {
				return nil, err
			}
			if ok {
				set[change] = struct{}{}
			}
		}
	}

	out := make([]changeset.Change, 0, len(set))
	for ch := range set {
		out = append(out, ch)
	}
	sortChanges(out)
	return out, nil
}

func (r *Repository) tree(id object.ID) (*gitobject.Tree, error) {
	return r.repo.TreeObject(plumbing.NewHash(id.String()))
}

func (r *Repository) commit(id object.ID) (*gitobject.Commit, error) {
	return r.repo.CommitObject(plumbing.NewHash(id.String()))
}

// toChange maps a go-git change onto a change-set entry. Mode-only
// modifications are dropped: change sets compare blob ids only.
func toChange(ch *gitobject.Change) (changeset.Change, bool, error) {
	action, err := ch.Action()
	if err != nil {
		return changeset.Change{}, false, err
	}
	switch action {
	case merkletrie.Insert:
		return changeset.Change{Path: ch.To.Name, Kind: changeset.Added}, true, nil
	case merkletrie.Delete:
		return changeset.Change{Path: ch.From.Name, Kind: changeset.Removed}, true, nil
	case merkletrie.Modify:
		if ch.From.TreeEntry.Hash == ch.To.TreeEntry.Hash {
			return changeset.Change{}, false, nil
		}
		return changeset.Change{Path: ch.To.Name, Kind: changeset.Modified}, true, nil
	default:
		return changeset.Change{}, false, fmt.Errorf("unsupported action %v", action)
	}
}

func compareChanges(id object.ID, want, got []changeset.Change) *Mismatch {
	wantSet := make(map[changeset.Change]bool, len(want))
	for _, ch := range want {
		wantSet[ch] = true
	}
	gotSet := make(map[changeset.Change]bool, len(got))
	for _, ch := range got {
		gotSet[ch] = true
	}

	m := Mismatch{Commit: id}
	for _, ch := range want {
		if !gotSet[ch] {
			m.Missing = append(m.Missing, ch)
		}
	}
	for _, ch := range got {
		if !wantSet[ch] {
			m.Extra = append(m.Extra, ch)
		}
	}
	if len(m.Missing) == 0 && len(m.Extra) == 0 {
		return nil
	}
	return &m
}

func sortChanges(changes []changeset.Change) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Path != changes[j].Path {
			return changes[i].Path < changes[j].Path
		}
		return changes[i].Kind < changes[j].Kind
	})
}
