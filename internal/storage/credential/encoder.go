package credential

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/yndnr/sitegate/internal/core/domain"
)

// Secret encodings accepted by NewEncoder.
const (
	EncodingPlain    = "plain"
	EncodingArgon2id = "argon2id"
)

// MinPepperLength is the shortest pepper accepted for argon2id.
const MinPepperLength = 16

// Argon2id parameters: memory=16384 KB, time=2, parallelism=2, keyLen=32.
const (
	argon2Time    = 2
	argon2Memory  = 16 * 1024
	argon2Threads = 2
	argon2KeyLen  = 32
)

// Encoder turns a submitted secret into the value bound to the credential
// query.
type Encoder interface {
	Encode(secret string) string
}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name, pepper string) (Encoder, error) {
	switch name {
	case "", EncodingPlain:
		return plainEncoder{}, nil
	case EncodingArgon2id:
		if len(pepper) < MinPepperLength {
			return nil, domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("argon2id pepper must be at least %d bytes", MinPepperLength))
		}
		return &argon2Encoder{pepper: []byte(pepper)}, nil
	default:
		return nil, domain.ErrInvalidArgument.WithDetails("unknown secret encoding: " + name)
	}
}

type plainEncoder struct{}

func (plainEncoder) Encode(secret string) string { return secret }

// argon2Encoder derives a deterministic argon2id key with the pepper as
// salt, so the stored column can be compared with plain equality.
type argon2Encoder struct {
	pepper []byte
}

func (e *argon2Encoder) Encode(secret string) string {
	key := argon2.IDKey([]byte(secret), e.pepper, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}
