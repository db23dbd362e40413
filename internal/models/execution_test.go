// internal/models/execution_test.go
package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestExecution() *ExecutionRecord {
	return &ExecutionRecord{
		PromptID:   "test-prompt",
		CallerID:   uuid.New(),
		Version:    "1.0.0",
		InputHash:  strings.Repeat("ab", 32),
		OutputHash: strings.Repeat("cd", 32),
		ExecutedAt: 1700000000,
		Signature:  strings.Repeat("ef", 64),
	}
}

func TestVerifySigner(t *testing.T) {
	r := newTestExecution()
	assert.True(t, r.VerifySigner(r.CallerID))
	assert.False(t, r.VerifySigner(uuid.New()))
}

func TestExecutionHashDeterministic(t *testing.T) {
	r := newTestExecution()
	assert.Equal(t, r.ExecutionHash(), r.ExecutionHash())

	other := newTestExecution()
	other.CallerID = r.CallerID
	other.ExecutedAt = r.ExecutedAt + 1
	assert.NotEqual(t, r.ExecutionHash(), other.ExecutionHash())
}

func TestIsRecent(t *testing.T) {
	r := newTestExecution()
	assert.True(t, r.IsRecent(r.ExecutedAt+86399))
	assert.False(t, r.IsRecent(r.ExecutedAt+86400))
}
