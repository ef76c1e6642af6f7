// Package fileid derives stable document identifiers from file paths, so a
// watched file maps to the same document across events.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const prefix = "file:"

// FileDocID returns a stable document identifier for the given path. The same
// cleaned path always yields the same identifier.
func FileDocID(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:16])
}

// IsFileDocID reports whether id was produced by FileDocID.
func IsFileDocID(id string) bool {
	return strings.HasPrefix(id, prefix)
}
