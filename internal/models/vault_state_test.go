// internal/models/vault_state_test.go
package models

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestVaultState() *VaultState {
	return &VaultState{
		ID:                VaultStateID,
		Admin:             uuid.New(),
		Treasury:          uuid.New(),
		ProtocolFeeBps:    250,
		CreatorShareBps:   6000,
		ValidatorShareBps: 1500,
		CreatedAt:         1000,
		LastUpdated:       1000,
	}
}

func TestValidateFeeDistribution(t *testing.T) {
	v := newTestVaultState()
	assert.True(t, v.ValidateFeeDistribution())

	v.CreatorShareBps = 10000
	v.ProtocolFeeBps = 0
	v.ValidatorShareBps = 0
	assert.True(t, v.ValidateFeeDistribution())

	v.ProtocolFeeBps = 1
	assert.False(t, v.ValidateFeeDistribution())
}

func TestIsOperational(t *testing.T) {
	v := newTestVaultState()
	assert.True(t, v.IsOperational())

	v.IsPaused = true
	assert.False(t, v.IsOperational())
}

func TestIncrementPromptCount(t *testing.T) {
	v := newTestVaultState()

	v.IncrementPromptCount(2000)
	assert.Equal(t, uint64(1), v.PromptCount)
	assert.Equal(t, int64(2000), v.LastUpdated)

	v.PromptCount = math.MaxUint64
	v.IncrementPromptCount(3000)
	assert.Equal(t, uint64(math.MaxUint64), v.PromptCount)
}
