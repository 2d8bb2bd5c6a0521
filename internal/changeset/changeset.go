// Package changeset classifies the paths of a commit snapshot as added,
// modified or removed relative to the commit's parents.
package changeset

import (
	"sort"

	"github.com/masmgr/commitgraph-go/internal/object"
)

// Kind represents the type of change.
type Kind int

const (
	Added Kind = iota
	Modified
	Removed
)

// String returns a string representation of the change kind.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is a single path classification.
type Change struct {
	Path string
	Kind Kind
}

// Compute returns the change set of current against its parents.
//
// A root commit (no parents) reports every path as Added. Otherwise each
// parent is compared independently and the result is the union of the
// per-parent sets, so a merge can report one path as both Added (relative
// to one side) and Modified (relative to the other). The result is sorted
// by path, then kind.
func Compute(current object.FileMap, parents []object.FileMap) []Change {
	seen := make(map[Change]struct{})

	if len(parents) == 0 {
		for path := range current {
			seen[Change{Path: path, Kind: Added}] = struct{}{}
		}
		return sorted(seen)
	}

	for _, parent := range parents {
		for path, blob := range current {
			prev, ok := parent[path]
			switch {
			case !ok:
				seen[Change{Path: path, Kind: Added}] = struct{}{}
			case prev != blob:
				seen[Change{Path: path, Kind: Modified}] = struct{}{}
			}
		}
		for path := range parent {
			if _, ok := current[path]; !ok {
				seen[Change{Path: path, Kind: Removed}] = struct{}{}
			}
		}
	}
	return sorted(seen)
}

func sorted(set map[Change]struct{}) []Change {
	changes := make([]Change, 0, len(set))
	for c := range set {
		changes = append(changes, c)
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Path != changes[j].Path {
			return changes[i].Path < changes[j].Path
		}
		return changes[i].Kind < changes[j].Kind
	})
	return changes
}

// Counts tallies changes per kind.
func Counts(changes []Change) map[Kind]int {
	counts := make(map[Kind]int, 3)
	for _, c := range changes {
		counts[c.Kind]++
	}
	return counts
}
