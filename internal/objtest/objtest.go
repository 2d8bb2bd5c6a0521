// Package objtest writes loose objects into a temporary object store so
// tests can build histories without a git binary.
package objtest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/klauspost/compress/zlib"

	"github.com/masmgr/commitgraph-go/internal/object"
)

// Store writes objects under Root using the git loose-object layout.
type Store struct {
	Root string
	t    testing.TB
	when int64
}

// New creates an empty object store in a temp directory.
func New(t testing.TB) *Store {
	t.Helper()
	return NewAt(t, filepath.Join(t.TempDir(), "objects"))
}

// NewAt creates (if needed) and wraps the objects directory at root.
func NewAt(t testing.TB, root string) *Store {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	return &Store{Root: root, t: t, when: 1700000000}
}

// Entry is a tree entry to be written by Tree.
type Entry struct {
	Mode   string
	Name   string
	Target object.ID
}

// File returns a regular-file entry.
func File(name string, blob object.ID) Entry {
	return Entry{Mode: "100644", Name: name, Target: blob}
}

// Dir returns a sub-tree entry.
func Dir(name string, tree object.ID) Entry {
	return Entry{Mode: "40000", Name: name, Target: tree}
}

// Write stores a payload under the given header type and returns its id.
func (s *Store) Write(kind string, payload []byte) object.ID {
	s.t.Helper()
	typ, err := plumbing.ParseObjectType(kind)
	if err != nil {
		s.t.Fatalf("ParseObjectType(%q): %v", kind, err)
	}
	id := object.ID(plumbing.ComputeHash(typ, payload).String())

	var raw bytes.Buffer
	fmt.Fprintf(&raw, "%s %d\x00", kind, len(payload))
	raw.Write(payload)
	s.WriteCompressed(id, raw.Bytes())
	return id
}

// WriteCompressed deflates data and stores it under id verbatim, which
// lets tests plant objects with malformed headers.
func (s *Store) WriteCompressed(id object.ID, data []byte) {
	s.t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		s.t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		s.t.Fatalf("zlib close: %v", err)
	}
	s.WriteFile(id, buf.Bytes())
}

// WriteFile stores bytes under id without compressing them.
func (s *Store) WriteFile(id object.ID, data []byte) {
	s.t.Helper()
	dir := filepath.Join(s.Root, string(id[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, string(id[2:])), data, 0o644); err != nil {
		s.t.Fatalf("WriteFile: %v", err)
	}
}

// Remove deletes the object file for id.
func (s *Store) Remove(id object.ID) {
	s.t.Helper()
	if err := os.Remove(filepath.Join(s.Root, string(id[:2]), string(id[2:]))); err != nil {
		s.t.Fatalf("Remove(%s): %v", id, err)
	}
}

// Blob stores file content.
func (s *Store) Blob(content string) object.ID {
	s.t.Helper()
	return s.Write("blob", []byte(content))
}

// Tree stores a tree with the given entries, sorted the way git sorts them.
func (s *Store) Tree(entries ...Entry) object.ID {
	s.t.Helper()
	return s.Write("tree", EncodeTree(s.t, entries...))
}

// EncodeTree builds a tree payload without storing it.
func EncodeTree(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sortKey(sorted[i]) < sortKey(sorted[j])
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		raw := plumbing.NewHash(string(e.Target))
		if raw.String() != string(e.Target) {
			t.Fatalf("entry %q: invalid target %q", e.Name, e.Target)
		}
		fmt.Fprintf(&buf, "%s %s\x00", e.Mode, e.Name)
		buf.Write(raw[:])
	}
	return buf.Bytes()
}

func sortKey(e Entry) string {
	if strings.HasPrefix(e.Mode, "40000") {
		return e.Name + "/"
	}
	return e.Name
}

// Files stores blobs and nested trees for a path->content map and returns the root tree id.
func (s *Store) Files(files map[string]string) object.ID {
	s.t.Helper()
	type dir struct {
		files map[string]string
		dirs  map[string]map[string]string
	}
	d := dir{files: map[string]string{}, dirs: map[string]map[string]string{}}
	for path, content := range files {
		head, rest, nested := strings.Cut(path, "/")
		if !nested {
			d.files[head] = content
			continue
		}
		if d.dirs[head] == nil {
			d.dirs[head] = map[string]string{}
		}
		d.dirs[head][rest] = content
	}

	var entries []Entry
	for name, content := range d.files {
		entries = append(entries, File(name, s.Blob(content)))
	}
	for name, sub := range d.dirs {
		entries = append(entries, Dir(name, s.Files(sub)))
	}
	return s.Tree(entries...)
}

// Commit stores a commit whose author timestamp increases with every call.
func (s *Store) Commit(tree object.ID, message string, parents ...object.ID) object.ID {
	s.t.Helper()
	s.when++
	sig := fmt.Sprintf("Test Author <test@example.com> %d +0000", s.when)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", tree)
	for _, p := range parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", sig)
	fmt.Fprintf(&buf, "committer %s\n", sig)
	buf.WriteString("\n")
	buf.WriteString(message)
	buf.WriteString("\n")
	return s.Write("commit", buf.Bytes())
}

// Reader opens the store for reading.
func (s *Store) Reader() *object.Store {
	s.t.Helper()
	st, err := object.OpenStore(s.Root)
	if err != nil {
		s.t.Fatalf("OpenStore: %v", err)
	}
	return st
}
