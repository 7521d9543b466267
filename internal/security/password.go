package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrNonASCII is returned when a password contains characters outside the
// ASCII range. Handlers translate it into the user-facing
// "Invalid password characters." message instead of a generic fault.
var ErrNonASCII = errors.New("password contains non-ASCII characters")

// HashPassword derives the stored digest from a plaintext password and the
// server-wide secret key. The transform is deterministic so identical
// passwords produce identical digests; that is acceptable only because
// digests are never compared across secret rotation. There is no decryption
// path.
func HashPassword(plain, secret string) (string, error) {
	if !isASCII(plain) {
		return "", ErrNonASCII
	}
	sum := sha256.Sum256([]byte(plain + secret))
	return hex.EncodeToString(sum[:]), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}
