package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

const (
	// DefaultLength is the default token length in bytes.
	DefaultLength = 32

	// MinLength is the smallest accepted token length in bytes.
	MinLength = 16
)

// ErrTooShort is returned when a requested token carries less than 128 bits.
var ErrTooShort = errors.New("token: length below 128 bits")

// Generator produces new plaintext tokens.
type Generator func() (string, error)

// Generate generates a cryptographically secure random token.
//
// The returned token is Base64 RawURL encoded so it is cookie and URL safe.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a token from length random bytes.
func GenerateWithLength(length int) (string, error) {
	if length < MinLength {
		return "", ErrTooShort
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
