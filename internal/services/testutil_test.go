// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/promptsig/vault-backend/internal/config"
	"github.com/promptsig/vault-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.VaultState{},
		&models.Prompt{},
		&models.ExecutionRecord{},
		&models.StakeRecord{},
		&models.TokenAccount{},
		&models.CreditPurchase{},
	))
	return db
}

// vaultFixture wires the full service graph against an in-memory
// database with the vault bootstrapped.
type vaultFixture struct {
	db         *gorm.DB
	cfg        *config.VaultConfig
	tokens     *TokenService
	vault      *VaultService
	prompts    *PromptService
	executions *ExecutionService
	stakes     *StakeService
	state      *models.VaultState
}

func newVaultFixture(t *testing.T) *vaultFixture {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.VaultConfig{
		AdminUsername:       "admin",
		AdminEmail:          "admin@vault.local",
		AdminPassword:       "bootstrap-admin-pass",
		TreasuryUsername:    "treasury",
		TreasuryEmail:       "treasury@vault.local",
		ProtocolFeeBps:      1500,
		CreatorShareBps:     6000,
		ValidatorShareBps:   1500,
		RewardRatePerSecond: 100,
		MinStakeDuration:    86400,
	}

	vault := NewVaultService(db, cfg)
	require.NoError(t, vault.Bootstrap())
	state, err := vault.GetState()
	require.NoError(t, err)

	tokens := NewTokenService(db)
	return &vaultFixture{
		db:         db,
		cfg:        cfg,
		tokens:     tokens,
		vault:      vault,
		prompts:    NewPromptService(db, tokens),
		executions: NewExecutionService(db, tokens),
		stakes:     NewStakeService(db, tokens, cfg),
		state:      state,
	}
}

func (f *vaultFixture) adminID() uuid.UUID {
	return f.state.Admin
}

func (f *vaultFixture) pause(t *testing.T) {
	t.Helper()
	_, err := f.vault.Pause(f.adminID())
	require.NoError(t, err)
}

func (f *vaultFixture) createUser(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@vault.local",
		PasswordHash: "unused",
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *vaultFixture) fund(t *testing.T, userID uuid.UUID, amount uint64) {
	t.Helper()
	require.NoError(t, f.tokens.Credit(f.db, models.LedgerOwnerForUser(userID), amount))
}

func (f *vaultFixture) balance(t *testing.T, owner string) uint64 {
	t.Helper()
	balance, err := f.tokens.Balance(owner)
	require.NoError(t, err)
	return balance
}

func (f *vaultFixture) registerPrompt(t *testing.T, authorID uuid.UUID, promptID string, fee uint64) *models.Prompt {
	t.Helper()
	prompt, err := f.prompts.Register(authorID, RegisterPromptInput{
		PromptID:    promptID,
		MetadataURI: "ipfs://" + promptID,
		Version:     "1.0.0",
		LicenseType: models.LicenseTypePublic,
		FeeAmount:   fee,
	})
	require.NoError(t, err)
	return prompt
}
