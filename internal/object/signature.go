package object

import (
	"strconv"
	"strings"
	"time"
)

// Signature is the parsed form of an author or committer header value.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// ParseSignature splits "Name <email> <unix-seconds> <+hhmm>".
// The timestamp is optional; ok is false when the value has no email part.
func ParseSignature(value string) (sig Signature, ok bool) {
	open := strings.IndexByte(value, '<')
	closing := strings.LastIndexByte(value, '>')
	if open < 0 || closing < open {
		return Signature{Name: strings.TrimSpace(value)}, false
	}

	sig.Name = strings.TrimSpace(value[:open])
	sig.Email = value[open+1 : closing]

	fields := strings.Fields(value[closing+1:])
	if len(fields) == 0 {
		return sig, true
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return sig, true
	}
	loc := time.UTC
	if len(fields) > 1 {
		if l, ok := parseTZ(fields[1]); ok {
			loc = l
		}
	}
	sig.When = time.Unix(secs, 0).In(loc)
	return sig, true
}

// parseTZ parses a "+hhmm" / "-hhmm" offset.
func parseTZ(s string) (*time.Location, bool) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return nil, false
	}
	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return nil, false
	}
	mins, err := strconv.Atoi(s[3:5])
	if err != nil {
		return nil, false
	}
	offset := hours*3600 + mins*60
	if s[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(s, offset), true
}
