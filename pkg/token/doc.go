// Package token provides session token generation and digest utilities.
//
// Tokens are opaque Base64 RawURL strings built from crypto/rand bytes.
// The default length is 32 bytes (256 bits); anything below MinLength
// (16 bytes, 128 bits) is refused.
//
// The session store never keeps a plaintext token. It indexes sessions by
// Hash(token), a hex SHA-256, and compares digests in constant time.
package token
