package changeset

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects changes by path using doublestar glob patterns.
type Filter struct {
	Include []string // Glob patterns to include
	Exclude []string // Glob patterns to exclude
}

// Validate reports the first malformed pattern.
func (f Filter) Validate() error {
	for _, p := range append(append([]string(nil), f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// Empty reports whether the filter accepts every path.
func (f Filter) Empty() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}

// Match checks if a path matches the include/exclude filters.
func (f Filter) Match(path string) bool {
	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	// Check exclude patterns first
	for _, pattern := range f.Exclude {
		matched, _ := doublestar.Match(pattern, path)
		if matched {
			return false
		}
	}

	// If no include patterns, accept all
	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		matched, _ := doublestar.Match(pattern, path)
		if matched {
			return true
		}
	}

	return false
}

// Apply returns the changes whose paths match.
func (f Filter) Apply(changes []Change) []Change {
	if f.Empty() {
		return changes
	}
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if f.Match(c.Path) {
			out = append(out, c)
		}
	}
	return out
}
