package helpers

import (
	"crypto/rand"
	"fmt"
)

// JoinCodeLength is the fixed length of community join codes
const JoinCodeLength = 6

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateJoinCode returns a random join code of uppercase letters and
// digits. Uniqueness is enforced by the database; callers retry on a
// unique violation.
func GenerateJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}

	return string(buf), nil
}
