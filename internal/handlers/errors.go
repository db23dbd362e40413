// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptsig/vault-backend/internal/models"
	"github.com/promptsig/vault-backend/internal/utils"
)

// respondError maps the domain error taxonomy onto HTTP status codes.
// Unknown errors are treated as internal.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrPromptNotFound),
		errors.Is(err, models.ErrStakeNotFound),
		errors.Is(err, models.ErrTagNotFound),
		errors.Is(err, models.ErrUserNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "not_found", err.Error(), nil)

	case errors.Is(err, models.ErrUnauthorizedAuthor),
		errors.Is(err, models.ErrUnauthorizedAdmin):
		utils.ForbiddenResponse(c, err.Error())

	case errors.Is(err, models.ErrPromptAlreadyExists),
		errors.Is(err, models.ErrExecutionRecordAlreadyExists),
		errors.Is(err, models.ErrDuplicateTag):
		utils.ConflictResponse(c, err.Error())

	case errors.Is(err, models.ErrVaultPaused):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "vault_paused", err.Error(), nil)

	case errors.Is(err, models.ErrInsufficientPayment),
		errors.Is(err, models.ErrInsufficientFunds):
		utils.ErrorResponse(c, http.StatusPaymentRequired, "insufficient_funds", err.Error(), nil)

	case errors.Is(err, models.ErrInsufficientTokenBalance),
		errors.Is(err, models.ErrPromptNotAccessible),
		errors.Is(err, models.ErrForkNotAllowed):
		utils.ForbiddenResponse(c, err.Error())

	case errors.Is(err, models.ErrPromptNotActive),
		errors.Is(err, models.ErrMinimumStakeDurationNotMet),
		errors.Is(err, models.ErrNoRewardsAvailable),
		errors.Is(err, models.ErrInsufficientStake),
		errors.Is(err, models.ErrCannotForkOwnPrompt),
		errors.Is(err, models.ErrCannotTransferToSameOwner):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "invalid_state", err.Error(), nil)

	case errors.Is(err, models.ErrInvalidFeeDistribution),
		errors.Is(err, models.ErrInvalidRoyaltyDistribution),
		errors.Is(err, models.ErrInvalidAccessControl),
		errors.Is(err, models.ErrInvalidLicenseType),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidPromptID),
		errors.Is(err, models.ErrInvalidTagName),
		errors.Is(err, models.ErrEmptyPromptID),
		errors.Is(err, models.ErrPromptIDTooLong),
		errors.Is(err, models.ErrEmptyMetadataURI),
		errors.Is(err, models.ErrMetadataURITooLong),
		errors.Is(err, models.ErrEmptyVersion),
		errors.Is(err, models.ErrVersionTooLong),
		errors.Is(err, models.ErrTooManyTags),
		errors.Is(err, models.ErrErrorMessageTooLong),
		errors.Is(err, models.ErrStakeAmountBelowMinimum):
		utils.BadRequestResponse(c, err.Error(), nil)

	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}

// currentUserID pulls the authenticated user out of the request context.
// A false return has already written the 401 response.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}
