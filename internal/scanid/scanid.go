// Package scanid generates market scan identifiers.
package scanid

import (
	"path/filepath"

	"github.com/google/uuid"
)

// New returns a random scan id.
func New() string {
	return uuid.NewString()
}

// FromPath returns a stable scan id for a posting file, so re-delivering the same
// file updates one scan instead of creating duplicates. Paths are cleaned first.
func FromPath(absolutePath string) string {
	normalized := filepath.ToSlash(filepath.Clean(absolutePath))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+normalized)).String()
}

// Valid reports whether id is a well-formed scan id.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
