// internal/models/vault_state.go
package models

import (
	"github.com/google/uuid"

	"github.com/promptsig/vault-backend/internal/utils"
)

// VaultState is the protocol-wide configuration singleton. It is created
// once at bootstrap and mutated only by pause/resume and prompt-count
// increments; it is never deleted.
type VaultState struct {
	ID                uint      `json:"-" gorm:"primaryKey"`
	Admin             uuid.UUID `json:"admin" gorm:"type:uuid;not null"`
	Treasury          uuid.UUID `json:"treasury" gorm:"type:uuid;not null"`
	PromptCount       uint64    `json:"prompt_count" gorm:"not null;default:0"`
	ProtocolFeeBps    uint16    `json:"protocol_fee_bps" gorm:"not null"`
	CreatorShareBps   uint16    `json:"creator_share_bps" gorm:"not null"`
	ValidatorShareBps uint16    `json:"validator_share_bps" gorm:"not null"`
	IsPaused          bool      `json:"is_paused" gorm:"not null;default:false"`
	CreatedAt         int64     `json:"created_at" gorm:"autoCreateTime:false"`
	LastUpdated       int64     `json:"last_updated" gorm:"autoUpdateTime:false"`
}

// VaultStateID is the fixed primary key of the singleton row.
const VaultStateID uint = 1

func (VaultState) TableName() string {
	return "vault_state"
}

// IsOperational reports whether mutating operations may proceed.
func (v *VaultState) IsOperational() bool {
	return !v.IsPaused
}

// ValidateFeeDistribution checks the protocol-level shares leave room for
// the burn remainder.
func (v *VaultState) ValidateFeeDistribution() bool {
	total := uint32(v.ProtocolFeeBps) + uint32(v.CreatorShareBps) + uint32(v.ValidatorShareBps)
	return total <= utils.BpsDenominator
}

// Touch records the mutation time.
func (v *VaultState) Touch(now int64) {
	v.LastUpdated = now
}

// IncrementPromptCount bumps the registered-prompt counter, capping rather
// than wrapping at the maximum representable value.
func (v *VaultState) IncrementPromptCount(now int64) {
	v.PromptCount = utils.SaturatingAddUint64(v.PromptCount, 1)
	v.Touch(now)
}
