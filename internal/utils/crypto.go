// internal/utils/crypto.go
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ValidateFileHash compares content against a sha256 hex digest. A leading
// "0x" on the expected hash is accepted.
func ValidateFileHash(fileData []byte, expectedHash string) bool {
	hasher := sha256.New()
	hasher.Write(fileData)
	actualHash := hex.EncodeToString(hasher.Sum(nil))
	return actualHash == strings.TrimPrefix(strings.ToLower(expectedHash), "0x")
}
