// internal/handlers/stake.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/promptsig/vault-backend/internal/services"
	"github.com/promptsig/vault-backend/internal/utils"
)

type StakeHandler struct {
	stakeService *services.StakeService
}

func NewStakeHandler(stakeService *services.StakeService) *StakeHandler {
	return &StakeHandler{
		stakeService: stakeService,
	}
}

type stakeAmountRequest struct {
	PromptID string `json:"prompt_id" binding:"required"`
	Amount   uint64 `json:"amount" binding:"required"`
}

// POST /stakes
func (h *StakeHandler) Stake(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req stakeAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	record, err := h.stakeService.Stake(userID, req.PromptID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"stake": record})
}

// POST /stakes/unstake
func (h *StakeHandler) Unstake(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req stakeAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	record, err := h.stakeService.Unstake(userID, req.PromptID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"stake": record})
}

// POST /stakes/claim
func (h *StakeHandler) ClaimRewards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		PromptID string `json:"prompt_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	record, payout, err := h.stakeService.ClaimRewards(userID, req.PromptID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"stake":  record,
		"payout": payout,
	})
}

// GET /stakes
func (h *StakeHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	_, result, err := h.stakeService.ListByOwner(userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, *result)
	utils.PaginatedResponse(c, *result)
}

// GET /stakes/:prompt_id
func (h *StakeHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	record, pending, err := h.stakeService.GetStake(userID, c.Param("prompt_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"stake":           record,
		"pending_rewards": pending,
	})
}

// GET /prompts/:prompt_id/staked
func (h *StakeHandler) TotalForPrompt(c *gin.Context) {
	total, err := h.stakeService.TotalStaked(c.Param("prompt_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"total_staked": total})
}
