// internal/services/execution_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/promptsig/vault-backend/internal/database"
	"github.com/promptsig/vault-backend/internal/models"
	"github.com/promptsig/vault-backend/internal/utils"
)

// ExecutionService meters prompt access: it charges the execution fee,
// distributes it four ways, appends the audit record and folds the
// execution into the prompt's running statistics, all in one transaction.
type ExecutionService struct {
	db     *gorm.DB
	tokens *TokenService
}

func NewExecutionService(db *gorm.DB, tokens *TokenService) *ExecutionService {
	return &ExecutionService{db: db, tokens: tokens}
}

// RecordExecutionInput is one execution report from a caller.
type RecordExecutionInput struct {
	PromptID        string  `json:"prompt_id" binding:"required"`
	Version         string  `json:"version" binding:"required"`
	InputHash       string  `json:"input_hash" binding:"required,hexhash"`
	OutputHash      string  `json:"output_hash" binding:"required,hexhash"`
	Signature       string  `json:"signature" binding:"required,hexsig"`
	ExecutionTimeMs uint32  `json:"execution_time_ms"`
	Success         bool    `json:"success"`
	ErrorMessage    *string `json:"error_message,omitempty"`
}

// RecordExecution performs one metered access. The fee is charged whether
// the execution succeeded or failed; only successful executions count
// toward revenue. Any failure leaves no trace: no record, no stats
// change, no partial fee movement.
func (s *ExecutionService) RecordExecution(callerID uuid.UUID, input RecordExecutionInput) (*models.ExecutionRecord, error) {
	if input.Version == "" {
		return nil, models.ErrEmptyVersion
	}
	if len(input.Version) > models.MaxVersionLen {
		return nil, models.ErrVersionTooLong
	}
	if input.ErrorMessage != nil && len(*input.ErrorMessage) > models.MaxErrorMessageLen {
		return nil, models.ErrErrorMessageTooLong
	}

	var record *models.ExecutionRecord
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadOperationalState(tx)
		if err != nil {
			return err
		}

		var prompt models.Prompt
		if err := tx.Where("prompt_id = ?", input.PromptID).First(&prompt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPromptNotFound
			}
			return fmt.Errorf("failed to load prompt: %w", err)
		}
		if !prompt.IsAccessible() {
			return models.ErrPromptNotAccessible
		}

		callerLedger := models.LedgerOwnerForUser(callerID)
		balance, err := s.tokens.Balance(callerLedger)
		if err != nil {
			return err
		}
		if !prompt.HasAccess(callerID, balance) {
			return models.ErrInsufficientTokenBalance
		}

		now := time.Now().Unix()

		var existing models.ExecutionRecord
		err = tx.Where("prompt_id = ? AND caller_id = ? AND executed_at = ?",
			input.PromptID, callerID, now).First(&existing).Error
		if err == nil {
			return models.ErrExecutionRecordAlreadyExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check execution uniqueness: %w", err)
		}

		fee := prompt.FeeAmount
		if fee > 0 {
			if balance < fee {
				return models.ErrInsufficientPayment
			}
			if err := s.distributeFee(tx, state, &prompt, callerLedger, fee); err != nil {
				return err
			}
		}

		created := &models.ExecutionRecord{
			PromptID:        prompt.PromptID,
			CallerID:        callerID,
			Version:         input.Version,
			InputHash:       input.InputHash,
			OutputHash:      input.OutputHash,
			ExecutedAt:      now,
			Signature:       input.Signature,
			ExecutionTimeMs: uint64(input.ExecutionTimeMs),
			Success:         input.Success,
			ErrorMessage:    input.ErrorMessage,
		}
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create execution record: %w", err)
		}

		prompt.RecordExecution(input.ExecutionTimeMs, input.Success, fee, now)
		if err := tx.Save(&prompt).Error; err != nil {
			return fmt.Errorf("failed to update prompt statistics: %w", err)
		}

		record = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"prompt_id": record.PromptID,
		"caller_id": callerID,
		"success":   record.Success,
	}).Debug("Execution recorded")
	return record, nil
}

// distributeFee moves the fee from the caller across the four royalty
// legs. The burn leg absorbs integer-division remainders so the legs
// always sum to the exact fee.
func (s *ExecutionService) distributeFee(tx *gorm.DB, state *models.VaultState, prompt *models.Prompt, callerLedger string, fee uint64) error {
	split, err := prompt.CalculateFeeDistribution(fee)
	if err != nil {
		return err
	}

	legs := []struct {
		to     string
		amount uint64
	}{
		{models.LedgerOwnerForUser(prompt.AuthorID), split.Creator},
		{models.LedgerOwnerForUser(state.Treasury), split.Dao},
		{models.LedgerOwnerValidatorPool, split.Validator},
		{models.LedgerOwnerBurnSink, split.Burn},
	}
	for _, leg := range legs {
		if err := s.tokens.Transfer(tx, callerLedger, leg.to, leg.amount); err != nil {
			if errors.Is(err, models.ErrInsufficientFunds) {
				return models.ErrInsufficientPayment
			}
			return err
		}
	}
	return nil
}

// ListByPrompt returns the execution history of one prompt, newest first.
func (s *ExecutionService) ListByPrompt(promptID string, pagination utils.PaginationParams) ([]models.ExecutionRecord, *utils.PaginationResult, error) {
	return s.list(s.db.Where("prompt_id = ?", promptID), pagination)
}

// ListByCaller returns one caller's execution history, newest first.
func (s *ExecutionService) ListByCaller(callerID uuid.UUID, pagination utils.PaginationParams) ([]models.ExecutionRecord, *utils.PaginationResult, error) {
	return s.list(s.db.Where("caller_id = ?", callerID), pagination)
}

func (s *ExecutionService) list(query *gorm.DB, pagination utils.PaginationParams) ([]models.ExecutionRecord, *utils.PaginationResult, error) {
	query = query.Model(&models.ExecutionRecord{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count executions: %w", err)
	}

	var records []models.ExecutionRecord
	if err := utils.ApplyPagination(query.Order("executed_at DESC"), pagination).Find(&records).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list executions: %w", err)
	}

	result := utils.CreatePaginationResult(records, total, pagination)
	return records, &result, nil
}
