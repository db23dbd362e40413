// internal/models/stake_test.go
package models

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStake(staked uint64, stakedAt int64) *StakeRecord {
	return &StakeRecord{
		OwnerID:      uuid.New(),
		PromptID:     "test-prompt",
		StakedAmount: staked,
		LastClaim:    stakedAt,
		StakedAt:     stakedAt,
	}
}

func TestAddRemoveStake(t *testing.T) {
	s := newTestStake(100, 1000)

	s.AddStake(50)
	assert.Equal(t, uint64(150), s.StakedAmount)

	require.NoError(t, s.RemoveStake(150))
	assert.Equal(t, uint64(0), s.StakedAmount)

	assert.ErrorIs(t, s.RemoveStake(1), ErrInsufficientStake)
}

func TestAddStakeSaturates(t *testing.T) {
	s := newTestStake(math.MaxUint64-10, 1000)
	s.AddStake(100)
	assert.Equal(t, uint64(math.MaxUint64), s.StakedAmount)
}

func TestPendingRewardsLinearAccrual(t *testing.T) {
	s := newTestStake(1000, 1000)

	// 1000 staked * 100/s * 3600s / 1_000_000 = 360
	got, err := s.PendingRewards(100, 1000+3600)
	require.NoError(t, err)
	assert.Equal(t, uint64(360), got)

	// No time elapsed, no accrual.
	got, err = s.PendingRewards(100, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)

	// Clock going backwards accrues nothing.
	got, err = s.PendingRewards(100, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestPendingRewardsTruncates(t *testing.T) {
	s := newTestStake(1, 1000)

	// 1 * 100 * 9999 = 999900 < 1_000_000: floors to zero.
	got, err := s.PendingRewards(100, 1000+9999)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)

	got, err = s.PendingRewards(100, 1000+10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)
}

func TestClaimResetsClock(t *testing.T) {
	s := newTestStake(1000, 1000)

	s.Claim(360, 4600)
	assert.Equal(t, uint64(360), s.RewardsEarned)
	assert.Equal(t, int64(4600), s.LastClaim)
	// The eligibility clock is not reset.
	assert.Equal(t, int64(1000), s.StakedAt)

	got, err := s.PendingRewards(100, 4600)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestIsEligibleForRewards(t *testing.T) {
	s := newTestStake(1000, 1000)

	assert.False(t, s.IsEligibleForRewards(86400, 1000+86399))
	assert.True(t, s.IsEligibleForRewards(86400, 1000+86400))
}

func TestTotalValue(t *testing.T) {
	s := newTestStake(1000, 1000)
	s.RewardsEarned = 250
	assert.Equal(t, uint64(1250), s.TotalValue())
}
