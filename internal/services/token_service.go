// internal/services/token_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/promptsig/vault-backend/internal/models"
	"github.com/promptsig/vault-backend/internal/utils"
)

// TokenService is the transfer rail: an internal fungible-credit ledger.
// Mutations always run on the caller's transaction handle so a failed
// multi-transfer operation rolls back as one unit.
type TokenService struct {
	db *gorm.DB
}

func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{db: db}
}

// Balance returns the current balance for an owner, zero if the account
// has never been funded.
func (s *TokenService) Balance(owner string) (uint64, error) {
	var account models.TokenAccount
	if err := s.db.Where("owner = ?", owner).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load token account: %w", err)
	}
	return account.Balance, nil
}

// Transfer moves amount between two owners. It fails with
// ErrInsufficientFunds when the source cannot cover the amount; no
// partial movement is ever visible outside the enclosing transaction.
func (s *TokenService) Transfer(tx *gorm.DB, from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	source, err := s.fetchAccount(tx, from)
	if err != nil {
		return err
	}
	if source.Balance < amount {
		return models.ErrInsufficientFunds
	}

	dest, err := s.fetchOrCreateAccount(tx, to)
	if err != nil {
		return err
	}

	source.Balance -= amount
	dest.Balance = utils.SaturatingAddUint64(dest.Balance, amount)

	if err := tx.Model(&models.TokenAccount{}).
		Where("id = ?", source.ID).
		Update("balance", source.Balance).Error; err != nil {
		return fmt.Errorf("failed to debit %s: %w", from, err)
	}
	if err := tx.Model(&models.TokenAccount{}).
		Where("id = ?", dest.ID).
		Update("balance", dest.Balance).Error; err != nil {
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}

	return nil
}

// Credit mints ledger balance for an owner (top-ups, reward payouts).
func (s *TokenService) Credit(tx *gorm.DB, owner string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	account, err := s.fetchOrCreateAccount(tx, owner)
	if err != nil {
		return err
	}

	account.Balance = utils.SaturatingAddUint64(account.Balance, amount)
	if err := tx.Model(&models.TokenAccount{}).
		Where("id = ?", account.ID).
		Update("balance", account.Balance).Error; err != nil {
		return fmt.Errorf("failed to credit %s: %w", owner, err)
	}

	return nil
}

func (s *TokenService) fetchAccount(tx *gorm.DB, owner string) (*models.TokenAccount, error) {
	var account models.TokenAccount
	if err := tx.Where("owner = ?", owner).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to load token account: %w", err)
	}
	return &account, nil
}

func (s *TokenService) fetchOrCreateAccount(tx *gorm.DB, owner string) (*models.TokenAccount, error) {
	var account models.TokenAccount
	err := tx.Where("owner = ?", owner).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load token account: %w", err)
	}

	account = models.TokenAccount{Owner: owner}
	if err := tx.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create token account: %w", err)
	}
	return &account, nil
}
