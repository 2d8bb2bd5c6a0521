package object

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Store reads zlib-compressed loose objects from a two-level fan-out
// directory layout: <root>/ab/cdef0123...
type Store struct {
	root string
}

// OpenStore returns a Store rooted at the given objects directory.
// The directory must already exist.
func OpenStore(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open object store: %s is not a directory", root)
	}
	return &Store{root: root}, nil
}

// Root returns the objects directory the store reads from.
func (s *Store) Root() string {
	return s.root
}

// objectPath returns the filesystem path for a given id.
func (s *Store) objectPath(id ID) string {
	return filepath.Join(s.root, string(id[:2]), string(id[2:]))
}

// Read locates, inflates and splits the object with the given id.
func (s *Store) Read(id ID) (*RawObject, error) {
	const op = "read object"
	if _, err := ParseID(string(id)); err != nil {
		return nil, &Error{Op: op, ID: id, Err: err}
	}

	compressed, err := os.ReadFile(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Op: op, ID: id, Err: ErrNotFound}
		}
		return nil, &Error{Op: op, ID: id, Err: err}
	}

	data, err := inflate(compressed)
	if err != nil {
		return nil, corrupt(op, id, "inflate: %v", err)
	}

	return splitObject(id, data)
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// splitObject parses the "<type> <size>\0" envelope of an inflated object.
func splitObject(id ID, data []byte) (*RawObject, error) {
	const op = "read object"

	nulIdx := bytes.IndexByte(data, 0)
	if nulIdx < 0 {
		return nil, corrupt(op, id, "missing NUL after header")
	}
	header := string(data[:nulIdx])
	payload := data[nulIdx+1:]

	typ, size, ok := strings.Cut(header, " ")
	if !ok {
		return nil, corrupt(op, id, "invalid header %q", header)
	}
	kind, err := parseKind(typ)
	if err != nil {
		return nil, &Error{Op: op, ID: id, Err: err}
	}
	length, err := strconv.Atoi(size)
	if err != nil {
		return nil, corrupt(op, id, "invalid length %q", size)
	}
	if length != len(payload) {
		return nil, corrupt(op, id, "length mismatch (header=%d, actual=%d)", length, len(payload))
	}

	return &RawObject{ID: id, Kind: kind, Payload: payload}, nil
}
