package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CalculateStringSHA256 returns the hex SHA-256 digest of the input string.
func CalculateStringSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DocumentID derives a stable short identifier from the key fields of a
// record. Parts are joined with '|' before hashing so that field boundaries
// are preserved; empty parts are skipped. The digest is truncated to 16 hex
// characters, which is plenty for a single index.
func DocumentID(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return CalculateStringSHA256(strings.Join(kept, "|"))[:16]
}
