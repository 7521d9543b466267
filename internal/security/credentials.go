package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// SessionValue produces an opaque session identifier by hashing the username
// together with fresh randomness. The value is unguessable but carries no
// meaning on its own; the session store maps it back to a user.
func SessionValue(username string) string {
	sum := sha256.Sum256([]byte(username + uuidHex()))
	return hex.EncodeToString(sum[:])
}

// TokenValue produces a candidate API token value. Callers must verify it
// against the store's unique index before use; see the token service's
// retry loop.
func TokenValue() string {
	return uuidHex()
}

func uuidHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
