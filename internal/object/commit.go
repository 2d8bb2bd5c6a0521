package object

import (
	"strings"
)

// Commit holds the fields decoded from a commit object.
type Commit struct {
	ID        ID
	Tree      ID
	Parents   []ID
	Author    string
	Committer string
	Message   string
}

// ParseCommit decodes a commit payload. Header lines run until the first
// empty line; everything after it is the message. Headers other than tree,
// parent, author and committer are ignored.
func ParseCommit(id ID, payload []byte) (*Commit, error) {
	const op = "parse commit"

	text := string(payload)
	header, message, found := strings.Cut(text, "\n\n")
	if !found {
		// A commit with an empty message may end right after the headers.
		header = strings.TrimSuffix(text, "\n")
	}

	c := &Commit{ID: id}
	haveTree := false
	for _, line := range strings.Split(header, "\n") {
		key, value, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		switch key {
		case "tree":
			if haveTree {
				return nil, corrupt(op, id, "duplicate tree header")
			}
			tree, err := ParseID(value)
			if err != nil {
				return nil, corrupt(op, id, "tree header: %v", err)
			}
			c.Tree = tree
			haveTree = true
		case "parent":
			parent, err := ParseID(value)
			if err != nil {
				return nil, corrupt(op, id, "parent header: %v", err)
			}
			c.Parents = append(c.Parents, parent)
		case "author":
			c.Author = value
		case "committer":
			c.Committer = value
		}
	}
	if !haveTree {
		return nil, corrupt(op, id, "missing tree header")
	}

	c.Message = strings.TrimSuffix(message, "\n")
	return c, nil
}

// ReadCommit reads and parses the commit object with the given id.
func ReadCommit(r Reader, id ID) (*Commit, error) {
	raw, err := r.Read(id)
	if err != nil {
		return nil, err
	}
	if raw.Kind != KindCommit {
		return nil, corrupt("read commit", id, "type mismatch: got %q, want %q", raw.Kind, KindCommit)
	}
	return ParseCommit(id, raw.Payload)
}
