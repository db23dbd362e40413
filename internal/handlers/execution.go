// internal/handlers/execution.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/promptsig/vault-backend/internal/services"
	"github.com/promptsig/vault-backend/internal/utils"
)

type ExecutionHandler struct {
	executionService *services.ExecutionService
}

func NewExecutionHandler(executionService *services.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{
		executionService: executionService,
	}
}

// POST /executions
func (h *ExecutionHandler) Record(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.RecordExecutionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	record, err := h.executionService.RecordExecution(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"execution": record})
}

// GET /executions
func (h *ExecutionHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	_, result, err := h.executionService.ListByCaller(userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, *result)
	utils.PaginatedResponse(c, *result)
}

// GET /prompts/:prompt_id/executions
func (h *ExecutionHandler) ListForPrompt(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	_, result, err := h.executionService.ListByPrompt(c.Param("prompt_id"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, *result)
	utils.PaginatedResponse(c, *result)
}
