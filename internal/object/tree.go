package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxTreeDepth bounds sub-tree recursion in a corrupted store.
const DefaultMaxTreeDepth = 1000

// subtreeModePrefix marks a tree entry that points at another tree. It is
// the fallback when the mode is not valid octal.
const subtreeModePrefix = "40000"

// TreeEntry is a single record in a tree object.
type TreeEntry struct {
	Mode   string
	Name   string
	Target ID
}

// IsTree reports whether the entry refers to a sub-tree.
func (e TreeEntry) IsTree() bool {
	m, err := e.FileMode()
	if err != nil {
		return strings.HasPrefix(e.Mode, subtreeModePrefix)
	}
	return m == filemode.Dir
}

// FileMode parses the octal mode string.
func (e TreeEntry) FileMode() (filemode.FileMode, error) {
	m, err := filemode.New(e.Mode)
	if err != nil {
		return filemode.Empty, fmt.Errorf("parse file mode %q: %w", e.Mode, err)
	}
	return m, nil
}

// ParseTree decodes a tree payload: repeated "<mode> <name>\0<20-byte id>".
func ParseTree(id ID, payload []byte) ([]TreeEntry, error) {
	const op = "parse tree"

	var entries []TreeEntry
	i := 0
	for i < len(payload) {
		sp := bytes.IndexByte(payload[i:], ' ')
		if sp <= 0 {
			return nil, corrupt(op, id, "entry at offset %d: missing mode", i)
		}
		mode := string(payload[i : i+sp])
		i += sp + 1

		nul := bytes.IndexByte(payload[i:], 0)
		if nul <= 0 {
			return nil, corrupt(op, id, "entry %q: missing name", mode)
		}
		name := string(payload[i : i+nul])
		i += nul + 1

		if strings.Contains(name, "/") {
			return nil, corrupt(op, id, "entry name %q contains a separator", name)
		}
		if i+rawIDLength > len(payload) {
			return nil, corrupt(op, id, "entry %q: truncated object id", name)
		}
		target, err := IDFromBytes(payload[i : i+rawIDLength])
		if err != nil {
			return nil, corrupt(op, id, "entry %q: %v", name, err)
		}
		i += rawIDLength

		entries = append(entries, TreeEntry{Mode: mode, Name: name, Target: target})
	}
	return entries, nil
}

// ReadTree reads and parses the tree object with the given id.
func ReadTree(r Reader, id ID) ([]TreeEntry, error) {
	raw, err := r.Read(id)
	if err != nil {
		return nil, err
	}
	if raw.Kind != KindTree {
		return nil, corrupt("read tree", id, "type mismatch: got %q, want %q", raw.Kind, KindTree)
	}
	return ParseTree(id, raw.Payload)
}

// TreeDecoder flattens trees into FileMaps. Sub-trees that decode without
// warnings are cached by id, so trees shared between commits are read once.
// A TreeDecoder is safe for concurrent use.
type TreeDecoder struct {
	reader   Reader
	maxDepth int

	mu    sync.RWMutex
	cache map[ID]FileMap
	group singleflight.Group
}

// NewTreeDecoder creates a decoder. maxDepth <= 0 selects DefaultMaxTreeDepth.
func NewTreeDecoder(r Reader, maxDepth int) *TreeDecoder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxTreeDepth
	}
	return &TreeDecoder{
		reader:   r,
		maxDepth: maxDepth,
		cache:    make(map[ID]FileMap),
	}
}

// Flatten returns the path->blob map for the tree with the given id.
// Failures of the root tree itself are returned. A missing or corrupt
// sub-tree is skipped and passed to warn; warn may be nil.
func (d *TreeDecoder) Flatten(id ID, warn func(error)) (FileMap, error) {
	if warn == nil {
		warn = func(error) {}
	}
	files, _, err := d.flatten(id, 0, warn)
	if err != nil {
		return nil, err
	}
	// The cache keeps its own copy; callers own the result.
	out := make(FileMap, len(files))
	for p, blob := range files {
		out[p] = blob
	}
	return out, nil
}

// errTreeTooDeep aborts the whole flatten rather than skipping one sub-tree.
var errTreeTooDeep = fmt.Errorf("%w: tree nesting too deep", ErrCorruptObject)

type flattenOutcome struct {
	files    FileMap
	complete bool
	warnings []error
}

// flatten returns the map for id and whether it was decoded without skipping anything.
func (d *TreeDecoder) flatten(id ID, depth int, warn func(error)) (FileMap, bool, error) {
	if depth > d.maxDepth {
		return nil, false, &Error{Op: "flatten tree", ID: id, Err: fmt.Errorf("%w: exceeds %d levels", errTreeTooDeep, d.maxDepth)}
	}

	d.mu.RLock()
	cached, ok := d.cache[id]
	d.mu.RUnlock()
	if ok {
		return cached, true, nil
	}

	// The key carries the depth: a self-referencing tree would otherwise
	// wait on its own in-flight call.
	key := id.String() + "@" + strconv.Itoa(depth)
	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		out := flattenOutcome{}
		files, complete, err := d.decode(id, depth, func(w error) { out.warnings = append(out.warnings, w) })
		if err != nil {
			return nil, err
		}
		if complete {
			d.mu.Lock()
			d.cache[id] = files
			d.mu.Unlock()
		}
		out.files, out.complete = files, complete
		return out, nil
	})
	if err != nil {
		return nil, false, err
	}
	out := v.(flattenOutcome)
	for _, w := range out.warnings {
		warn(w)
	}
	return out.files, out.complete, nil
}

func (d *TreeDecoder) decode(id ID, depth int, warn func(error)) (FileMap, bool, error) {
	entries, err := ReadTree(d.reader, id)
	if err != nil {
		return nil, false, err
	}

	files := make(FileMap, len(entries))
	complete := true
	for _, e := range entries {
		if !e.IsTree() {
			files[e.Name] = e.Target
			continue
		}
		sub, subComplete, err := d.flatten(e.Target, depth+1, warn)
		if err != nil {
			if errors.Is(err, errTreeTooDeep) {
				return nil, false, err
			}
			warn(fmt.Errorf("skip sub-tree %q: %w", e.Name, err))
			complete = false
			continue
		}
		if !subComplete {
			complete = false
		}
		for p, blob := range sub {
			files[e.Name+"/"+p] = blob
		}
	}
	return files, complete, nil
}
