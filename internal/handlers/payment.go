// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptsig/vault-backend/internal/services"
	"github.com/promptsig/vault-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /credits/topup
func (h *PaymentHandler) CreateTopUp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	intent, err := h.paymentService.CreateTopUpIntent(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.CreatedResponse(c, gin.H{"top_up": intent})
}

// POST /credits/topup/:purchase_id/confirm
func (h *PaymentHandler) ConfirmTopUp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	purchaseID, err := uuid.Parse(c.Param("purchase_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid purchase ID", nil)
		return
	}

	purchase, err := h.paymentService.ConfirmTopUp(userID, purchaseID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"purchase": purchase})
}

// GET /credits/balance
func (h *PaymentHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.paymentService.GetBalance(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"balance": balance})
}

// GET /credits/history
func (h *PaymentHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	_, result, err := h.paymentService.GetPurchaseHistory(userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, *result)
	utils.PaginatedResponse(c, *result)
}
