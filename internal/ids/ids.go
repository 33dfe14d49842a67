// Package ids issues the opaque identifiers used for artifacts, collections
// and notes. An identifier doubles as a storage key and a URL path segment.
package ids

import "github.com/google/uuid"

const maxLen = 128

// New returns a fresh random identifier (UUIDv4, crypto/rand backed).
func New() string {
	return uuid.NewString()
}

// Valid reports whether id is safe to use as a storage key and path segment.
// Server-issued ids always pass; client-supplied ids (collection auto-create,
// note PUT) are restricted to [A-Za-z0-9_-] so they can never escape a directory.
func Valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_':
		default:
			return false
		}
	}
	return true
}

// Issued reports whether id has the exact shape New produces: a lowercase
// canonical UUIDv4. Valid admits client-chosen names too; Issued does not.
func Issued(id string) bool {
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.String() == id
}
