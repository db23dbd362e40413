// internal/services/vault_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsig/vault-backend/internal/models"
)

func TestBootstrapIsIdempotent(t *testing.T) {
	f := newVaultFixture(t)

	require.NoError(t, f.vault.Bootstrap())

	var states int64
	require.NoError(t, f.db.Model(&models.VaultState{}).Count(&states).Error)
	assert.Equal(t, int64(1), states)

	var pools int64
	require.NoError(t, f.db.Model(&models.TokenAccount{}).Count(&pools).Error)
	assert.Equal(t, int64(4), pools)
}

func TestPauseResumeRequiresAdmin(t *testing.T) {
	f := newVaultFixture(t)

	_, err := f.vault.Pause(uuid.New())
	assert.ErrorIs(t, err, models.ErrUnauthorizedAdmin)

	_, err = f.vault.Resume(uuid.New())
	assert.ErrorIs(t, err, models.ErrUnauthorizedAdmin)
}

func TestPauseIdempotentAndAlwaysTouches(t *testing.T) {
	f := newVaultFixture(t)

	state, err := f.vault.Pause(f.adminID())
	require.NoError(t, err)
	assert.True(t, state.IsPaused)

	// A repeated pause keeps the flag but must still refresh LastUpdated.
	require.NoError(t, f.db.Model(&models.VaultState{}).
		Where("id = ?", models.VaultStateID).
		Update("last_updated", 0).Error)

	state, err = f.vault.Pause(f.adminID())
	require.NoError(t, err)
	assert.True(t, state.IsPaused)
	assert.Greater(t, state.LastUpdated, int64(0))

	state, err = f.vault.Resume(f.adminID())
	require.NoError(t, err)
	assert.False(t, state.IsPaused)

	require.NoError(t, f.db.Model(&models.VaultState{}).
		Where("id = ?", models.VaultStateID).
		Update("last_updated", 0).Error)

	state, err = f.vault.Resume(f.adminID())
	require.NoError(t, err)
	assert.False(t, state.IsPaused)
	assert.Greater(t, state.LastUpdated, int64(0))
}

func TestUpdateFeeDistributionRejectsExcessiveShares(t *testing.T) {
	f := newVaultFixture(t)

	_, err := f.vault.UpdateFeeDistribution(f.adminID(), 5000, 5000, 1)
	assert.ErrorIs(t, err, models.ErrInvalidFeeDistribution)

	state, err := f.vault.UpdateFeeDistribution(f.adminID(), 2000, 6000, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint16(2000), state.ProtocolFeeBps)
}
