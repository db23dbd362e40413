// internal/handlers/vault.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/promptsig/vault-backend/internal/services"
	"github.com/promptsig/vault-backend/internal/utils"
)

type VaultHandler struct {
	vaultService *services.VaultService
}

func NewVaultHandler(vaultService *services.VaultService) *VaultHandler {
	return &VaultHandler{
		vaultService: vaultService,
	}
}

// GET /vault/state
func (h *VaultHandler) GetState(c *gin.Context) {
	state, err := h.vaultService.GetState()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"vault": state})
}

// POST /vault/pause
func (h *VaultHandler) Pause(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := h.vaultService.Pause(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"vault": state})
}

// POST /vault/resume
func (h *VaultHandler) Resume(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := h.vaultService.Resume(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"vault": state})
}

// PUT /vault/fees
func (h *VaultHandler) UpdateFees(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ProtocolFeeBps    uint16 `json:"protocol_fee_bps"`
		CreatorShareBps   uint16 `json:"creator_share_bps"`
		ValidatorShareBps uint16 `json:"validator_share_bps"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	state, err := h.vaultService.UpdateFeeDistribution(userID, req.ProtocolFeeBps, req.CreatorShareBps, req.ValidatorShareBps)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"vault": state})
}
