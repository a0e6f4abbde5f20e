// Package contentkey derives the stable identifier of a literal's fixed text.
package contentkey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Size is the length of a ContentKey in hex characters.
const Size = sha256.Size * 2

// ContentKey is the lowercase hex SHA-256 digest of a literal's fixed text.
type ContentKey string

// Hash returns the ContentKey for fixedText. It is total and deterministic.
func Hash(fixedText string) ContentKey {
	sum := sha256.Sum256([]byte(fixedText))
	return ContentKey(hex.EncodeToString(sum[:]))
}

// Parse validates s as a ContentKey.
func Parse(s string) (ContentKey, error) {
	if len(s) != Size {
		return "", fmt.Errorf("content key %q: want %d hex characters, got %d", s, Size, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("content key %q: invalid character %q at %d", s, c, i)
		}
	}
	return ContentKey(s), nil
}

// Short returns an abbreviated form for logs.
func (k ContentKey) Short() string {
	if len(k) <= 12 {
		return string(k)
	}
	return string(k[:12])
}

func (k ContentKey) String() string { return string(k) }
