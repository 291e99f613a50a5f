package phrase

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
)

// IDPrefix starts every phrase identifier.
const IDPrefix = "ctx_"

// Hash returns the lowercase hex SHA-256 digest of s's UTF-8 bytes.
// Identifiers derived from it must stay byte-compatible with any standard
// SHA-256 implementation.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// BuildContextID returns the identifier of an already normalized phrase.
func BuildContextID(normalized string) string {
	return IDPrefix + Hash(normalized)
}

// IDFor normalizes raw and returns its identifier. Phrases that differ only
// in case, spacing or punctuation share an identifier.
func IDFor(raw string) string {
	return BuildContextID(ingest.NormalizeContext(raw))
}

// IsContextID reports whether id has the ctx_<64 hex> shape.
func IsContextID(id string) bool {
	if !strings.HasPrefix(id, IDPrefix) {
		return false
	}
	digest := id[len(IDPrefix):]
	if len(digest) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(digest); i++ {
		c := digest[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
