package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex returns 2n hex characters, used for per-user password salts.
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
