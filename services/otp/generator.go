package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

// CodeLength is the fixed width of generated codes.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a zero-padded 6-digit code drawn uniformly from
// [0, 10^6) using the platform CSPRNG. An entropy failure aborts the send.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// HashCode computes the hex-encoded SHA-256 digest of the code's UTF-8 bytes.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// hashesEqual compares two hex digests in constant time so response latency
// does not leak where the digests first differ.
func hashesEqual(a, b string) bool {
	rawA, errA := hex.DecodeString(a)
	rawB, errB := hex.DecodeString(b)
	if errA != nil || errB != nil || len(rawA) != len(rawB) {
		return false
	}
	return subtle.ConstantTimeCompare(rawA, rawB) == 1
}
