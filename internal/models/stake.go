// internal/models/stake.go
package models

import (
	"github.com/google/uuid"

	"github.com/promptsig/vault-backend/internal/utils"
)

// StakeRecord tracks one staker's position against one prompt. The record
// survives a zero balance so the pair can restake later.
type StakeRecord struct {
	BaseModel
	OwnerID       uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex:idx_stake_key,priority:2"`
	PromptID      string    `json:"prompt_id" gorm:"size:64;not null;uniqueIndex:idx_stake_key,priority:1;index"`
	StakedAmount  uint64    `json:"staked_amount" gorm:"not null;default:0"`
	RewardsEarned uint64    `json:"rewards_earned" gorm:"not null;default:0"`
	LastClaim     int64     `json:"last_claim" gorm:"not null"`
	StakedAt      int64     `json:"staked_at" gorm:"not null"`

	// Relationships
	Owner User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// AddStake increases the position, clamping at the maximum.
func (s *StakeRecord) AddStake(amount uint64) {
	s.StakedAmount = utils.SaturatingAddUint64(s.StakedAmount, amount)
}

// RemoveStake decreases the position; the balance never goes negative.
func (s *StakeRecord) RemoveStake(amount uint64) error {
	if amount > s.StakedAmount {
		return ErrInsufficientStake
	}
	s.StakedAmount = utils.SaturatingSubUint64(s.StakedAmount, amount)
	return nil
}

// PendingRewards computes the fixed-point linear accrual since the last
// claim: floor(staked * rate * elapsed / 1_000_000). Not compounding.
func (s *StakeRecord) PendingRewards(ratePerSecond uint64, now int64) (uint64, error) {
	if now <= s.LastClaim {
		return 0, nil
	}
	elapsed := uint64(now - s.LastClaim)

	weighted, err := utils.CheckedMulDiv(s.StakedAmount, ratePerSecond, 1)
	if err != nil {
		return 0, err
	}
	return utils.CheckedMulDiv(weighted, elapsed, 1_000_000)
}

// Claim folds a computed reward into the earned total and resets the
// claim clock.
func (s *StakeRecord) Claim(amount uint64, now int64) {
	s.RewardsEarned = utils.SaturatingAddUint64(s.RewardsEarned, amount)
	s.LastClaim = now
}

// IsEligibleForRewards gates claims on the minimum stake duration measured
// from stake creation, not from the last claim.
func (s *StakeRecord) IsEligibleForRewards(minDuration, now int64) bool {
	return now-s.StakedAt >= minDuration
}

// TotalValue is the position plus accumulated rewards.
func (s *StakeRecord) TotalValue() uint64 {
	return utils.SaturatingAddUint64(s.StakedAmount, s.RewardsEarned)
}
