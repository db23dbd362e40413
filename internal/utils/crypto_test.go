// internal/utils/crypto_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	content := []byte("prompt body")

	hash := ContentHash(content)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, ContentHash(content))
	assert.NotEqual(t, hash, ContentHash([]byte("other body")))

	assert.True(t, ValidateContentHash(content, hash))
	assert.False(t, ValidateContentHash([]byte("tampered"), hash))
}

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(32)
	require.NoError(t, err)
	b, err := GenerateRandomString(32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestGenerateExecutionID(t *testing.T) {
	id := GenerateExecutionID("prompt-a", "caller-1", 1700000000)
	assert.Len(t, id, 32)
	assert.Equal(t, id, GenerateExecutionID("prompt-a", "caller-1", 1700000000))
	assert.NotEqual(t, id, GenerateExecutionID("prompt-a", "caller-1", 1700000001))
}
