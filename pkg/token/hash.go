package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hash computes the hex encoded SHA-256 of a token.
func Hash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Verify reports whether token hashes to digest.
//
// The comparison is constant time.
func Verify(token, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(token)), []byte(digest)) == 1
}
