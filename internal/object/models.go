package object

import "fmt"

// Kind identifies the type of a loose object.
type Kind int

const (
	KindCommit Kind = iota
	KindTree
	KindBlob
)

// String returns the name used in the object header.
func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// parseKind maps an object header type to a Kind.
// Annotated tags are not supported and are reported as corrupt.
func parseKind(s string) (Kind, error) {
	switch s {
	case "commit":
		return KindCommit, nil
	case "tree":
		return KindTree, nil
	case "blob":
		return KindBlob, nil
	default:
		return 0, fmt.Errorf("%w: unsupported object type %q", ErrCorruptObject, s)
	}
}

// RawObject is a decompressed loose object with its header removed.
type RawObject struct {
	ID      ID
	Kind    Kind
	Payload []byte
}

// FileMap maps slash-separated repository paths to blob ids.
type FileMap map[string]ID

// Reader reads raw objects by id. *Store is the on-disk implementation.
type Reader interface {
	Read(id ID) (*RawObject, error)
}

// Compile-time interface conformance check.
var _ Reader = (*Store)(nil)
