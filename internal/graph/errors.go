package graph

import (
	"errors"
	"fmt"

	"github.com/masmgr/commitgraph-go/internal/object"
)

var (
	// ErrCycleDetected means commit parentage loops back on itself, which
	// only happens in a corrupted store.
	ErrCycleDetected = errors.New("cycle detected in commit graph")

	// ErrHistoryTruncated marks commits left out because of Options.MaxCommits.
	ErrHistoryTruncated = errors.New("history truncated")
)

// Warning is a non-fatal problem met while building the graph. The build
// continues with the affected object treated as absent.
type Warning struct {
	// Commit is the commit being resolved, if any.
	Commit object.ID
	// Object is the object that could not be used.
	Object object.ID
	Err    error
}

func (w Warning) Error() string {
	if w.Commit != "" {
		return fmt.Sprintf("commit %s: %v", w.Commit.Short(), w.Err)
	}
	return w.Err.Error()
}

func (w Warning) Unwrap() error {
	return w.Err
}
