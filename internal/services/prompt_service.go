// internal/services/prompt_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/promptsig/vault-backend/internal/database"
	"github.com/promptsig/vault-backend/internal/models"
	"github.com/promptsig/vault-backend/internal/utils"
)

// PromptService implements the registry: registration, versioning,
// licensing, tagging, status transitions, ownership transfer and forking.
type PromptService struct {
	db     *gorm.DB
	tokens *TokenService
}

func NewPromptService(db *gorm.DB, tokens *TokenService) *PromptService {
	return &PromptService{db: db, tokens: tokens}
}

// RegisterPromptInput carries everything a new registration needs.
// Royalty defaults to the 60/15/15/10 split when nil.
type RegisterPromptInput struct {
	PromptID      string                `json:"prompt_id" binding:"required"`
	MetadataURI   string                `json:"metadata_uri" binding:"required"`
	Version       string                `json:"version" binding:"required"`
	ContentHash   string                `json:"content_hash"`
	LicenseType   models.LicenseType    `json:"license_type" binding:"required"`
	FeeAmount     uint64                `json:"fee_amount"`
	TokenGate     *string               `json:"token_gate,omitempty"`
	Royalty       *models.RoyaltyConfig `json:"royalty,omitempty"`
	Tags          []models.Tag          `json:"tags,omitempty"`
	AccessControl *models.AccessControl `json:"access_control,omitempty"`
}

// VersionInput describes one new version entry.
type VersionInput struct {
	Version     string `json:"version" binding:"required"`
	MetadataURI string `json:"metadata_uri" binding:"required"`
	ContentHash string `json:"content_hash"`
}

// UpdatePromptInput carries partial mutable-field updates; nil fields are
// left untouched.
type UpdatePromptInput struct {
	MetadataURI   *string               `json:"metadata_uri,omitempty"`
	FeeAmount     *uint64               `json:"fee_amount,omitempty"`
	AccessControl *models.AccessControl `json:"access_control,omitempty"`
}

// UpdateLicenseInput carries partial license-policy updates.
type UpdateLicenseInput struct {
	LicenseType *models.LicenseType   `json:"license_type,omitempty"`
	FeeAmount   *uint64               `json:"fee_amount,omitempty"`
	TokenGate   *string               `json:"token_gate,omitempty"`
	Royalty     *models.RoyaltyConfig `json:"royalty,omitempty"`
}

// ForkPromptInput carries the fork request. Everything but the source
// identity comes from the forker, so a fork can diverge from the source
// immediately; the royalty config always resets to the default split.
type ForkPromptInput struct {
	NewPromptID   string                `json:"new_prompt_id" binding:"required"`
	MetadataURI   string                `json:"metadata_uri" binding:"required"`
	Version       string                `json:"version" binding:"required"`
	ContentHash   string                `json:"content_hash"`
	LicenseType   models.LicenseType    `json:"license_type" binding:"required"`
	FeeAmount     uint64                `json:"fee_amount"`
	TokenGate     *string               `json:"token_gate,omitempty"`
	Tags          []models.Tag          `json:"tags,omitempty"`
	AccessControl *models.AccessControl `json:"access_control,omitempty"`
}

// PromptSearchParams filters listing queries.
type PromptSearchParams struct {
	Query       string
	AuthorID    *uuid.UUID
	LicenseType models.LicenseType
	Status      models.PromptStatus
	Tag         string
}

// Register validates and creates a new prompt with a single initial
// version, and bumps the protocol prompt counter in the same transaction.
func (s *PromptService) Register(authorID uuid.UUID, input RegisterPromptInput) (*models.Prompt, error) {
	if err := validateRegisterInput(&input); err != nil {
		return nil, err
	}

	royalty := models.DefaultRoyaltyConfig()
	if input.Royalty != nil {
		royalty = *input.Royalty
	}
	if err := royalty.Validate(); err != nil {
		return nil, err
	}

	access := models.AccessControl{}
	if input.AccessControl != nil {
		access = *input.AccessControl
	}
	if err := access.Validate(); err != nil {
		return nil, err
	}

	var prompt *models.Prompt
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadOperationalState(tx)
		if err != nil {
			return err
		}

		var existing models.Prompt
		err = tx.Where("prompt_id = ?", input.PromptID).First(&existing).Error
		if err == nil {
			return models.ErrPromptAlreadyExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check prompt uniqueness: %w", err)
		}

		now := time.Now().Unix()
		created := &models.Prompt{
			PromptID:       input.PromptID,
			AuthorID:       authorID,
			MetadataURI:    input.MetadataURI,
			CurrentVersion: input.Version,
			LicenseType:    input.LicenseType,
			FeeAmount:      input.FeeAmount,
			TokenGate:      input.TokenGate,
			Status:         models.PromptStatusActive,
			VersionCount:   1,
			RecentVersions: models.VersionEntries{{
				Version:     input.Version,
				MetadataURI: input.MetadataURI,
				Timestamp:   now,
				ContentHash: input.ContentHash,
			}},
			RoyaltyConfig: royalty,
			Tags:          models.TagList(input.Tags),
			AccessControl: access,
			LastUpdated:   now,
		}
		created.SyncTagNames()
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create prompt: %w", err)
		}

		state.IncrementPromptCount(now)
		if err := tx.Save(state).Error; err != nil {
			return fmt.Errorf("failed to update prompt count: %w", err)
		}

		prompt = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"prompt_id": prompt.PromptID,
		"author_id": authorID,
		"license":   prompt.LicenseType,
	}).Info("Prompt registered")
	return prompt, nil
}

// Get loads one prompt by its registry identifier.
func (s *PromptService) Get(promptID string) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := s.db.Preload("Author").Where("prompt_id = ?", promptID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to load prompt: %w", err)
	}
	return &prompt, nil
}

// Search lists prompts with filters and pagination.
func (s *PromptService) Search(params PromptSearchParams, pagination utils.PaginationParams) ([]models.Prompt, *utils.PaginationResult, error) {
	query := s.db.Model(&models.Prompt{}).Preload("Author")

	if params.Query != "" {
		like := "%" + strings.ToLower(params.Query) + "%"
		query = query.Where("LOWER(prompt_id) LIKE ? OR LOWER(metadata_uri) LIKE ?", like, like)
	}
	if params.AuthorID != nil {
		query = query.Where("author_id = ?", *params.AuthorID)
	}
	if params.LicenseType != "" {
		query = query.Where("license_type = ?", params.LicenseType)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	} else {
		query = query.Where("status NOT IN ?", []models.PromptStatus{models.PromptStatusRemoved})
	}
	if params.Tag != "" {
		query = query.Where("? = ANY(tag_names)", params.Tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count prompts: %w", err)
	}

	var prompts []models.Prompt
	query = utils.ApplySort(query, pagination, []string{"created_at", "last_updated", "stats_total_executions", "fee_amount"})
	if err := utils.ApplyPagination(query, pagination).Find(&prompts).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list prompts: %w", err)
	}

	result := utils.CreatePaginationResult(prompts, total, pagination)
	return prompts, &result, nil
}

// CreateVersion appends a new version to the prompt's ring buffer. Author
// only; the prompt must be active.
func (s *PromptService) CreateVersion(actorID uuid.UUID, promptID string, input VersionInput) (*models.Prompt, error) {
	if input.Version == "" {
		return nil, models.ErrEmptyVersion
	}
	if len(input.Version) > models.MaxVersionLen {
		return nil, models.ErrVersionTooLong
	}
	if input.MetadataURI == "" {
		return nil, models.ErrEmptyMetadataURI
	}
	if len(input.MetadataURI) > models.MaxMetadataURILen {
		return nil, models.ErrMetadataURITooLong
	}

	return s.mutatePrompt(actorID, promptID, func(prompt *models.Prompt, now int64) error {
		if !prompt.IsActive() {
			return models.ErrPromptNotActive
		}
		prompt.AddVersion(models.VersionEntry{
			Version:     input.Version,
			MetadataURI: input.MetadataURI,
			Timestamp:   now,
			ContentHash: input.ContentHash,
		})
		return nil
	})
}

// Update applies partial mutable-field changes. Author only.
func (s *PromptService) Update(actorID uuid.UUID, promptID string, input UpdatePromptInput) (*models.Prompt, error) {
	if input.MetadataURI != nil {
		if *input.MetadataURI == "" {
			return nil, models.ErrEmptyMetadataURI
		}
		if len(*input.MetadataURI) > models.MaxMetadataURILen {
			return nil, models.ErrMetadataURITooLong
		}
	}
	if input.AccessControl != nil {
		if err := input.AccessControl.Validate(); err != nil {
			return nil, err
		}
	}

	return s.mutatePrompt(actorID, promptID, func(prompt *models.Prompt, now int64) error {
		if input.MetadataURI != nil {
			prompt.MetadataURI = *input.MetadataURI
		}
		if input.FeeAmount != nil {
			prompt.FeeAmount = *input.FeeAmount
		}
		if input.AccessControl != nil {
			prompt.AccessControl = *input.AccessControl
		}
		prompt.Touch(now)
		return nil
	})
}

// UpdateLicense applies partial license-policy changes. Author only. A
// royalty change must still sum to exactly 100%.
func (s *PromptService) UpdateLicense(actorID uuid.UUID, promptID string, input UpdateLicenseInput) (*models.Prompt, error) {
	if input.LicenseType != nil && !input.LicenseType.Valid() {
		return nil, models.ErrInvalidLicenseType
	}
	if input.Royalty != nil {
		if err := input.Royalty.Validate(); err != nil {
			return nil, err
		}
	}

	return s.mutatePrompt(actorID, promptID, func(prompt *models.Prompt, now int64) error {
		if input.LicenseType != nil {
			prompt.LicenseType = *input.LicenseType
		}
		if input.FeeAmount != nil {
			prompt.FeeAmount = *input.FeeAmount
		}
		if input.TokenGate != nil {
			prompt.TokenGate = input.TokenGate
		}
		if input.Royalty != nil {
			prompt.RoyaltyConfig = *input.Royalty
		}
		prompt.Touch(now)
		return nil
	})
}

// UpdateStatus moves the prompt through its lifecycle. Author only.
// "removed" is terminal: a removed prompt accepts no further transitions.
func (s *PromptService) UpdateStatus(actorID uuid.UUID, promptID string, status models.PromptStatus) (*models.Prompt, error) {
	if !status.Valid() {
		return nil, models.ErrInvalidStatus
	}

	return s.mutatePrompt(actorID, promptID, func(prompt *models.Prompt, now int64) error {
		if prompt.Status == models.PromptStatusRemoved {
			return models.ErrInvalidStatus
		}
		prompt.Status = status
		prompt.Touch(now)
		return nil
	})
}

// AddTag attaches a tag. Author only; at most five tags, unique by name.
func (s *PromptService) AddTag(actorID uuid.UUID, promptID string, tag models.Tag) (*models.Prompt, error) {
	if !utils.ValidateTagName(tag.Name) {
		return nil, models.ErrInvalidTagName
	}

	return s.mutatePrompt(actorID, promptID, func(prompt *models.Prompt, now int64) error {
		return prompt.AddTag(tag, now)
	})
}

// RemoveTag detaches a tag by name. Author only.
func (s *PromptService) RemoveTag(actorID uuid.UUID, promptID string, name string) (*models.Prompt, error) {
	return s.mutatePrompt(actorID, promptID, func(prompt *models.Prompt, now int64) error {
		return prompt.RemoveTag(name, now)
	})
}

// TransferOwnership reassigns the prompt to a new author. Current author
// only; transferring to the current author is rejected.
func (s *PromptService) TransferOwnership(actorID uuid.UUID, promptID string, newOwnerID uuid.UUID) (*models.Prompt, error) {
	var prompt *models.Prompt
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.First(&owner, "id = ?", newOwnerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrUserNotFound
			}
			return fmt.Errorf("failed to load new owner: %w", err)
		}

		loaded, err := s.loadForAuthor(tx, actorID, promptID)
		if err != nil {
			return err
		}
		if loaded.AuthorID == newOwnerID {
			return models.ErrCannotTransferToSameOwner
		}

		loaded.AuthorID = newOwnerID
		loaded.Touch(time.Now().Unix())
		if err := tx.Save(loaded).Error; err != nil {
			return fmt.Errorf("failed to transfer prompt: %w", err)
		}

		prompt = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"prompt_id": promptID,
		"from":      actorID,
		"to":        newOwnerID,
	}).Info("Prompt ownership transferred")
	return prompt, nil
}

// Fork derives a new prompt from an existing one under a new author.
// Every field of the fork comes from the request rather than the source,
// so the fork diverges immediately; statistics start fresh and the
// royalty config resets to the default split. Private prompts cannot be
// forked, nor can authors fork their own prompts.
func (s *PromptService) Fork(callerID uuid.UUID, sourcePromptID string, input ForkPromptInput) (*models.Prompt, error) {
	if err := validateRegisterInput(&RegisterPromptInput{
		PromptID:    input.NewPromptID,
		MetadataURI: input.MetadataURI,
		Version:     input.Version,
		LicenseType: input.LicenseType,
		Tags:        input.Tags,
	}); err != nil {
		return nil, err
	}

	access := models.AccessControl{}
	if input.AccessControl != nil {
		access = *input.AccessControl
	}
	if err := access.Validate(); err != nil {
		return nil, err
	}

	var fork *models.Prompt
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadOperationalState(tx)
		if err != nil {
			return err
		}

		var source models.Prompt
		if err := tx.Where("prompt_id = ?", sourcePromptID).First(&source).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPromptNotFound
			}
			return fmt.Errorf("failed to load source prompt: %w", err)
		}

		if !source.IsAccessible() {
			return models.ErrPromptNotAccessible
		}
		if source.LicenseType == models.LicenseTypePrivate {
			return models.ErrForkNotAllowed
		}
		if source.AuthorID == callerID {
			return models.ErrCannotForkOwnPrompt
		}

		var existing models.Prompt
		err = tx.Where("prompt_id = ?", input.NewPromptID).First(&existing).Error
		if err == nil {
			return models.ErrPromptAlreadyExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check fork uniqueness: %w", err)
		}

		now := time.Now().Unix()
		created := &models.Prompt{
			PromptID:       input.NewPromptID,
			AuthorID:       callerID,
			MetadataURI:    input.MetadataURI,
			CurrentVersion: input.Version,
			LicenseType:    input.LicenseType,
			FeeAmount:      input.FeeAmount,
			TokenGate:      input.TokenGate,
			Status:         models.PromptStatusActive,
			VersionCount:   1,
			RecentVersions: models.VersionEntries{{
				Version:     input.Version,
				MetadataURI: input.MetadataURI,
				Timestamp:   now,
				ContentHash: input.ContentHash,
			}},
			RoyaltyConfig: models.DefaultRoyaltyConfig(),
			Tags:          models.TagList(input.Tags),
			AccessControl: access,
			LastUpdated:   now,
		}
		created.SyncTagNames()
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create fork: %w", err)
		}

		state.IncrementPromptCount(now)
		if err := tx.Save(state).Error; err != nil {
			return fmt.Errorf("failed to update prompt count: %w", err)
		}

		fork = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"source":  sourcePromptID,
		"fork":    input.NewPromptID,
		"user_id": callerID,
	}).Info("Prompt forked")
	return fork, nil
}

// CheckAccess resolves whether a user may execute a prompt under its
// license, consulting the token ledger for token-gated licenses.
func (s *PromptService) CheckAccess(promptID string, userID uuid.UUID) (bool, error) {
	prompt, err := s.Get(promptID)
	if err != nil {
		return false, err
	}
	if !prompt.IsAccessible() {
		return false, nil
	}

	balance, err := s.tokens.Balance(models.LedgerOwnerForUser(userID))
	if err != nil {
		return false, err
	}
	return prompt.HasAccess(userID, balance), nil
}

// mutatePrompt runs an author-gated mutation inside one transaction with
// the pause gate applied.
func (s *PromptService) mutatePrompt(actorID uuid.UUID, promptID string, mutate func(*models.Prompt, int64) error) (*models.Prompt, error) {
	var prompt *models.Prompt
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if _, err := loadOperationalState(tx); err != nil {
			return err
		}

		loaded, err := s.loadForAuthor(tx, actorID, promptID)
		if err != nil {
			return err
		}

		if err := mutate(loaded, time.Now().Unix()); err != nil {
			return err
		}
		if err := tx.Save(loaded).Error; err != nil {
			return fmt.Errorf("failed to save prompt: %w", err)
		}

		prompt = loaded
		return nil
	})
	return prompt, err
}

func (s *PromptService) loadForAuthor(tx *gorm.DB, actorID uuid.UUID, promptID string) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := tx.Where("prompt_id = ?", promptID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to load prompt: %w", err)
	}
	if prompt.AuthorID != actorID {
		return nil, models.ErrUnauthorizedAuthor
	}
	return &prompt, nil
}

// loadOperationalState fetches the vault singleton and rejects the
// operation when the vault is paused.
func loadOperationalState(tx *gorm.DB) (*models.VaultState, error) {
	var state models.VaultState
	if err := tx.First(&state, models.VaultStateID).Error; err != nil {
		return nil, fmt.Errorf("failed to load vault state: %w", err)
	}
	if !state.IsOperational() {
		return nil, models.ErrVaultPaused
	}
	return &state, nil
}

func validatePromptIdentifier(id string) error {
	if id == "" {
		return models.ErrEmptyPromptID
	}
	if len(id) > models.MaxPromptIDLen {
		return models.ErrPromptIDTooLong
	}
	if !utils.ValidatePromptID(id) {
		return models.ErrInvalidPromptID
	}
	return nil
}

func validateRegisterInput(input *RegisterPromptInput) error {
	if err := validatePromptIdentifier(input.PromptID); err != nil {
		return err
	}
	if input.MetadataURI == "" {
		return models.ErrEmptyMetadataURI
	}
	if len(input.MetadataURI) > models.MaxMetadataURILen {
		return models.ErrMetadataURITooLong
	}
	if input.Version == "" {
		return models.ErrEmptyVersion
	}
	if len(input.Version) > models.MaxVersionLen {
		return models.ErrVersionTooLong
	}
	if !input.LicenseType.Valid() {
		return models.ErrInvalidLicenseType
	}
	if len(input.Tags) > models.MaxTags {
		return models.ErrTooManyTags
	}
	seen := make(map[string]bool, len(input.Tags))
	for _, tag := range input.Tags {
		if !utils.ValidateTagName(tag.Name) {
			return models.ErrInvalidTagName
		}
		if seen[tag.Name] {
			return models.ErrDuplicateTag
		}
		seen[tag.Name] = true
	}
	return nil
}
