// internal/services/stake_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/promptsig/vault-backend/internal/config"
	"github.com/promptsig/vault-backend/internal/database"
	"github.com/promptsig/vault-backend/internal/models"
	"github.com/promptsig/vault-backend/internal/utils"
)

// StakeService manages per-prompt stake positions and linear reward
// accrual. Staked balance lives in the stake pool ledger account; rewards
// are paid from the reward pool.
type StakeService struct {
	db     *gorm.DB
	tokens *TokenService
	cfg    *config.VaultConfig
}

func NewStakeService(db *gorm.DB, tokens *TokenService, cfg *config.VaultConfig) *StakeService {
	return &StakeService{db: db, tokens: tokens, cfg: cfg}
}

// Stake moves amount from the owner's ledger account into the stake pool
// and creates or grows the position. Restaking keeps the original
// eligibility clock; it does not reset the minimum-duration gate.
func (s *StakeService) Stake(ownerID uuid.UUID, promptID string, amount uint64) (*models.StakeRecord, error) {
	if amount == 0 {
		return nil, models.ErrStakeAmountBelowMinimum
	}

	var record *models.StakeRecord
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if _, err := loadOperationalState(tx); err != nil {
			return err
		}

		var prompt models.Prompt
		if err := tx.Where("prompt_id = ?", promptID).First(&prompt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPromptNotFound
			}
			return fmt.Errorf("failed to load prompt: %w", err)
		}
		if !prompt.IsActive() {
			return models.ErrPromptNotActive
		}

		if err := s.tokens.Transfer(tx, models.LedgerOwnerForUser(ownerID), models.LedgerOwnerStakePool, amount); err != nil {
			return err
		}

		now := time.Now().Unix()
		loaded, err := s.loadStake(tx, ownerID, promptID)
		if err != nil {
			if !errors.Is(err, models.ErrStakeNotFound) {
				return err
			}
			loaded = &models.StakeRecord{
				OwnerID:   ownerID,
				PromptID:  promptID,
				LastClaim: now,
				StakedAt:  now,
			}
			loaded.AddStake(amount)
			if err := tx.Create(loaded).Error; err != nil {
				return fmt.Errorf("failed to create stake: %w", err)
			}
			record = loaded
			return nil
		}

		loaded.AddStake(amount)
		if err := tx.Save(loaded).Error; err != nil {
			return fmt.Errorf("failed to update stake: %w", err)
		}
		record = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"prompt_id": promptID,
		"owner_id":  ownerID,
		"amount":    amount,
	}).Info("Stake added")
	return record, nil
}

// Unstake returns amount from the stake pool to the owner. The record
// survives at zero balance so the pair can restake later.
func (s *StakeService) Unstake(ownerID uuid.UUID, promptID string, amount uint64) (*models.StakeRecord, error) {
	if amount == 0 {
		return nil, models.ErrStakeAmountBelowMinimum
	}

	var record *models.StakeRecord
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if _, err := loadOperationalState(tx); err != nil {
			return err
		}

		loaded, err := s.loadStake(tx, ownerID, promptID)
		if err != nil {
			return err
		}
		if err := loaded.RemoveStake(amount); err != nil {
			return err
		}

		if err := s.tokens.Transfer(tx, models.LedgerOwnerStakePool, models.LedgerOwnerForUser(ownerID), amount); err != nil {
			return err
		}

		if err := tx.Save(loaded).Error; err != nil {
			return fmt.Errorf("failed to update stake: %w", err)
		}
		record = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"prompt_id": promptID,
		"owner_id":  ownerID,
		"amount":    amount,
	}).Info("Stake removed")
	return record, nil
}

// ClaimRewards pays out the accrued rewards. Claims are gated on the
// minimum stake duration measured from the position's creation, and a
// zero accrual is an error rather than a silent no-op.
func (s *StakeService) ClaimRewards(ownerID uuid.UUID, promptID string) (*models.StakeRecord, uint64, error) {
	var (
		record *models.StakeRecord
		payout uint64
	)
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if _, err := loadOperationalState(tx); err != nil {
			return err
		}

		loaded, err := s.loadStake(tx, ownerID, promptID)
		if err != nil {
			return err
		}

		now := time.Now().Unix()
		if !loaded.IsEligibleForRewards(s.cfg.MinStakeDuration, now) {
			return models.ErrMinimumStakeDurationNotMet
		}

		pending, err := loaded.PendingRewards(s.cfg.RewardRatePerSecond, now)
		if err != nil {
			return err
		}
		if pending == 0 {
			return models.ErrNoRewardsAvailable
		}

		// The reward pool is an emission source: top it up when a claim
		// exceeds its pre-funded balance.
		poolBalance, err := s.tokens.Balance(models.LedgerOwnerRewardPool)
		if err != nil {
			return err
		}
		if poolBalance < pending {
			if err := s.tokens.Credit(tx, models.LedgerOwnerRewardPool, pending-poolBalance); err != nil {
				return err
			}
		}
		if err := s.tokens.Transfer(tx, models.LedgerOwnerRewardPool, models.LedgerOwnerForUser(ownerID), pending); err != nil {
			return err
		}

		loaded.Claim(pending, now)
		if err := tx.Save(loaded).Error; err != nil {
			return fmt.Errorf("failed to update stake: %w", err)
		}

		record = loaded
		payout = pending
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	log.WithFields(log.Fields{
		"prompt_id": promptID,
		"owner_id":  ownerID,
		"payout":    payout,
	}).Info("Stake rewards claimed")
	return record, payout, nil
}

// GetStake returns one position with its live pending-reward figure.
func (s *StakeService) GetStake(ownerID uuid.UUID, promptID string) (*models.StakeRecord, uint64, error) {
	record, err := s.loadStake(s.db, ownerID, promptID)
	if err != nil {
		return nil, 0, err
	}

	pending, err := record.PendingRewards(s.cfg.RewardRatePerSecond, time.Now().Unix())
	if err != nil {
		return nil, 0, err
	}
	return record, pending, nil
}

// ListByOwner returns all of one owner's positions.
func (s *StakeService) ListByOwner(ownerID uuid.UUID, pagination utils.PaginationParams) ([]models.StakeRecord, *utils.PaginationResult, error) {
	query := s.db.Model(&models.StakeRecord{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count stakes: %w", err)
	}

	var records []models.StakeRecord
	if err := utils.ApplyPagination(query.Order("staked_at DESC"), pagination).Find(&records).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list stakes: %w", err)
	}

	result := utils.CreatePaginationResult(records, total, pagination)
	return records, &result, nil
}

// TotalStaked sums the live stake across all positions on a prompt.
func (s *StakeService) TotalStaked(promptID string) (uint64, error) {
	var total int64
	err := s.db.Model(&models.StakeRecord{}).
		Where("prompt_id = ?", promptID).
		Select("COALESCE(SUM(staked_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum stakes: %w", err)
	}
	return uint64(total), nil
}

func (s *StakeService) loadStake(tx *gorm.DB, ownerID uuid.UUID, promptID string) (*models.StakeRecord, error) {
	var record models.StakeRecord
	err := tx.Where("owner_id = ? AND prompt_id = ?", ownerID, promptID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrStakeNotFound
		}
		return nil, fmt.Errorf("failed to load stake: %w", err)
	}
	return &record, nil
}
