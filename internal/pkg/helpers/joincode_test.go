package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJoinCode(t *testing.T) {
	code, err := GenerateJoinCode()
	require.NoError(t, err)

	assert.Len(t, code, JoinCodeLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(joinCodeAlphabet, r), "unexpected character %q", r)
	}
}

func TestGenerateJoinCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateJoinCode()
		require.NoError(t, err)
		seen[code] = true
	}

	// 50 draws from a 36^6 space colliding down to a handful would mean
	// the generator is broken
	assert.Greater(t, len(seen), 45)
}
