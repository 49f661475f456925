package utils

import (
    "crypto/sha256"
    "encoding/hex"
)

// FileHash returns the SHA-256 hex digest of an uploaded evidence binary.
// The hash is computed locally before the upload so duplicate or tampered
// files can be detected regardless of what the object store returns.
func FileHash(data []byte) string {
    sum := sha256.Sum256(data)
    return hex.EncodeToString(sum[:])
}
