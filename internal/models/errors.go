// internal/models/errors.go
package models

import "errors"

// Vault error taxonomy. Every failure aborts the enclosing operation
// atomically and surfaces one of these kinds; handlers map them to HTTP
// status codes. None are retried by the engine itself.
var (
	// Validation
	ErrInvalidFeeDistribution     = errors.New("invalid fee distribution - total must not exceed 100%")
	ErrInvalidTreasury            = errors.New("invalid treasury address")
	ErrEmptyPromptID              = errors.New("prompt ID cannot be empty")
	ErrPromptIDTooLong            = errors.New("prompt ID is too long (max 64 characters)")
	ErrEmptyMetadataURI           = errors.New("metadata URI cannot be empty")
	ErrMetadataURITooLong         = errors.New("metadata URI is too long (max 256 characters)")
	ErrEmptyVersion               = errors.New("version string cannot be empty")
	ErrVersionTooLong             = errors.New("version string is too long (max 32 characters)")
	ErrTooManyTags                = errors.New("too many tags (max 5 allowed)")
	ErrInvalidPromptID            = errors.New("prompt ID contains invalid characters")
	ErrInvalidTagName             = errors.New("invalid tag name")
	ErrInvalidRoyaltyDistribution = errors.New("invalid royalty distribution - must sum to 100%")
	ErrErrorMessageTooLong        = errors.New("error message is too long (max 256 characters)")
	ErrInvalidAccessControl       = errors.New("invalid access control configuration")
	ErrInvalidLicenseType         = errors.New("invalid license type")
	ErrInvalidStatus              = errors.New("invalid prompt status")

	// Authorization
	ErrUnauthorizedAuthor = errors.New("unauthorized - only prompt author can perform this action")
	ErrUnauthorizedAdmin  = errors.New("unauthorized - only admin can perform this action")

	// State legality
	ErrVaultPaused                  = errors.New("vault is currently paused")
	ErrPromptAlreadyExists          = errors.New("prompt already exists")
	ErrPromptNotFound               = errors.New("prompt not found")
	ErrPromptNotActive              = errors.New("prompt is not active")
	ErrPromptNotAccessible          = errors.New("prompt is not accessible")
	ErrDuplicateTag                 = errors.New("duplicate tag name")
	ErrTagNotFound                  = errors.New("tag not found")
	ErrCannotForkOwnPrompt          = errors.New("cannot fork own prompt")
	ErrForkNotAllowed               = errors.New("fork not allowed for this license type")
	ErrCannotTransferToSameOwner    = errors.New("cannot transfer ownership to same owner")
	ErrExecutionRecordAlreadyExists = errors.New("execution record already exists")
	ErrStakeNotFound                = errors.New("stake not found")
	ErrUserNotFound                 = errors.New("user not found")
	ErrMinimumStakeDurationNotMet   = errors.New("minimum stake duration not met")
	ErrNoRewardsAvailable           = errors.New("no rewards available to claim")

	// Resource
	ErrInsufficientTokenBalance = errors.New("access denied - insufficient token balance")
	ErrInsufficientPayment      = errors.New("insufficient payment for prompt execution")
	ErrInsufficientStake        = errors.New("insufficient stake amount")
	ErrStakeAmountBelowMinimum  = errors.New("invalid stake amount - below minimum")
	ErrInsufficientFunds        = errors.New("insufficient funds")
)
