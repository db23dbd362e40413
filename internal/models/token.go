// internal/models/token.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Well-known ledger accounts. User accounts use the user's UUID string as
// the owner reference.
const (
	LedgerOwnerValidatorPool = "validator_pool"
	LedgerOwnerStakePool     = "stake_pool"
	LedgerOwnerRewardPool    = "reward_pool"
	LedgerOwnerBurnSink      = "burn_sink"
)

// TokenAccount is one balance row in the internal token ledger, the
// concrete transfer rail the engine meters against.
type TokenAccount struct {
	BaseModel
	Owner   string `json:"owner" gorm:"uniqueIndex;size:64;not null"`
	Balance uint64 `json:"balance" gorm:"not null;default:0"`
}

// LedgerOwnerForUser derives the ledger owner reference for a user.
func LedgerOwnerForUser(userID uuid.UUID) string {
	return userID.String()
}

// CreditPurchase records one Stripe top-up that mints ledger credit on
// confirmation.
type CreditPurchase struct {
	BaseModel
	UserID           uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount           uint64         `json:"amount" gorm:"not null"`
	PaymentReference string         `json:"payment_reference" gorm:"size:255;index"`
	Status           PurchaseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ProcessedAt      *time.Time     `json:"processed_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
