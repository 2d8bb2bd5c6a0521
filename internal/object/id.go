package object

import (
	"encoding/hex"
	"fmt"
)

// IDLength is the length of a hex-encoded object id.
const IDLength = 40

// rawIDLength is the length of an object id in binary form, as stored in tree entries.
const rawIDLength = 20

// ID is the lowercase hex SHA-1 of an object.
type ID string

// ParseID validates s as a 40-character lowercase hex object id.
func ParseID(s string) (ID, error) {
	if len(s) != IDLength {
		return "", fmt.Errorf("%w %q: expected %d hex characters", ErrInvalidID, s, IDLength)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w %q: unexpected character %q", ErrInvalidID, s, c)
		}
	}
	return ID(s), nil
}

// IDFromBytes expands a 20-byte binary id into its hex form.
func IDFromBytes(b []byte) (ID, error) {
	if len(b) != rawIDLength {
		return "", fmt.Errorf("invalid binary object id: expected %d bytes, got %d", rawIDLength, len(b))
	}
	return ID(hex.EncodeToString(b)), nil
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// Short returns the abbreviated 7-character form.
func (id ID) Short() string {
	if len(id) <= 7 {
		return string(id)
	}
	return string(id[:7])
}
