// internal/services/vault_service.go
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
)

// VaultService owns the protocol singleton: bootstrap, pause/resume and
// fee-schedule administration.
type VaultService struct {
	db  *gorm.DB
	cfg *config.VaultConfig
}

func NewVaultService(db *gorm.DB, cfg *config.VaultConfig) *VaultService {
	return &VaultService{db: db, cfg: cfg}
}

// Bootstrap seeds the vault on first start: the admin and treasury users,
// the protocol state row and the well-known ledger pools. Subsequent
// starts are a no-op.
func (s *VaultService) Bootstrap() error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		admin, err := s.ensureUser(tx, s.cfg.AdminUsername, s.cfg.AdminEmail, s.cfg.AdminPassword, models.UserRoleAdmin)
		if err != nil {
			return err
		}
		treasury, err := s.ensureUser(tx, s.cfg.TreasuryUsername, s.cfg.TreasuryEmail, "", models.UserRoleAuthor)
		if err != nil {
			return err
		}

		var state models.VaultState
		err = tx.First(&state, models.VaultStateID).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load vault state: %w", err)
		}

		now := time.Now().Unix()
		state = models.VaultState{
			ID:                models.VaultStateID,
			Admin:             admin.ID,
			Treasury:          treasury.ID,
			ProtocolFeeBps:    s.cfg.ProtocolFeeBps,
			CreatorShareBps:   s.cfg.CreatorShareBps,
			ValidatorShareBps: s.cfg.ValidatorShareBps,
			CreatedAt:         now,
			LastUpdated:       now,
		}
		if !state.ValidateFeeDistribution() {
			return models.ErrInvalidFeeDistribution
		}
		if err := tx.Create(&state).Error; err != nil {
			return fmt.Errorf("failed to create vault state: %w", err)
		}

		pools := []string{
			models.LedgerOwnerValidatorPool,
			models.LedgerOwnerStakePool,
			models.LedgerOwnerRewardPool,
			models.LedgerOwnerBurnSink,
		}
		for _, pool := range pools {
			if err := tx.Create(&models.TokenAccount{Owner: pool}).Error; err != nil {
				return fmt.Errorf("failed to create ledger pool %s: %w", pool, err)
			}
		}

		log.WithFields(log.Fields{
			"admin":    admin.Username,
			"treasury": treasury.Username,
		}).Info("Vault state initialized")
		return nil
	})
}

// GetState returns the protocol singleton.
func (s *VaultService) GetState() (*models.VaultState, error) {
	var state models.VaultState
	if err := s.db.First(&state, models.VaultStateID).Error; err != nil {
		return nil, fmt.Errorf("failed to load vault state: %w", err)
	}
	return &state, nil
}

// Pause halts all mutating prompt operations. Admin only; pausing an
// already paused vault succeeds without effect.
func (s *VaultService) Pause(actorID uuid.UUID) (*models.VaultState, error) {
	return s.setPaused(actorID, true)
}

// Resume lifts a pause. Admin only and idempotent, like Pause.
func (s *VaultService) Resume(actorID uuid.UUID) (*models.VaultState, error) {
	return s.setPaused(actorID, false)
}

func (s *VaultService) setPaused(actorID uuid.UUID, paused bool) (*models.VaultState, error) {
	var state *models.VaultState
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		loaded, err := s.loadStateForAdmin(tx, actorID)
		if err != nil {
			return err
		}

		changed := loaded.IsPaused != paused
		loaded.IsPaused = paused
		loaded.Touch(time.Now().Unix())
		if err := tx.Save(loaded).Error; err != nil {
			return fmt.Errorf("failed to update vault state: %w", err)
		}
		if changed {
			log.WithField("paused", paused).Warn("Vault pause state changed")
		}

		state = loaded
		return nil
	})
	return state, err
}

// UpdateFeeDistribution replaces the protocol-level fee shares. The
// implicit burn share absorbs whatever the three shares leave.
func (s *VaultService) UpdateFeeDistribution(actorID uuid.UUID, protocolBps, creatorBps, validatorBps uint16) (*models.VaultState, error) {
	var state *models.VaultState
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		loaded, err := s.loadStateForAdmin(tx, actorID)
		if err != nil {
			return err
		}

		loaded.ProtocolFeeBps = protocolBps
		loaded.CreatorShareBps = creatorBps
		loaded.ValidatorShareBps = validatorBps
		if !loaded.ValidateFeeDistribution() {
			return models.ErrInvalidFeeDistribution
		}

		loaded.Touch(time.Now().Unix())
		if err := tx.Save(loaded).Error; err != nil {
			return fmt.Errorf("failed to update vault state: %w", err)
		}

		state = loaded
		return nil
	})
	return state, err
}

func (s *VaultService) loadStateForAdmin(tx *gorm.DB, actorID uuid.UUID) (*models.VaultState, error) {
	var state models.VaultState
	if err := tx.First(&state, models.VaultStateID).Error; err != nil {
		return nil, fmt.Errorf("failed to load vault state: %w", err)
	}
	if state.Admin != actorID {
		return nil, models.ErrUnauthorizedAdmin
	}
	return &state, nil
}

func (s *VaultService) ensureUser(tx *gorm.DB, username, email, password string, role models.UserRole) (*models.User, error) {
	var user models.User
	err := tx.Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}

	user = models.User{
		Username: username,
		Email:    email,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if password == "" {
		password = uuid.New().String()
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", username, err)
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return &user, nil
}
