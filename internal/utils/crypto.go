// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/big"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// ContentHash digests prompt content for version verification.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// GenerateExecutionID derives a short deterministic ID from the execution
// key tuple.
func GenerateExecutionID(promptID, caller string, timestamp int64) string {
	hasher := sha256.New()
	hasher.Write([]byte(promptID))
	hasher.Write([]byte(caller))

	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(timestamp))
	hasher.Write(ts[:])

	return hex.EncodeToString(hasher.Sum(nil)[:16])
}

// ValidateContentHash checks data against its expected hex digest.
func ValidateContentHash(data []byte, expectedHash string) bool {
	return ContentHash(data) == expectedHash
}
