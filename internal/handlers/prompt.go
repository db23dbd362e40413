// internal/handlers/prompt.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptsig/vault-backend/internal/models"
	"github.com/promptsig/vault-backend/internal/services"
	"github.com/promptsig/vault-backend/internal/utils"
)

type PromptHandler struct {
	promptService  *services.PromptService
	storageService *services.StorageService
}

func NewPromptHandler(promptService *services.PromptService, storageService *services.StorageService) *PromptHandler {
	return &PromptHandler{
		promptService:  promptService,
		storageService: storageService,
	}
}

// GET /prompts
func (h *PromptHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.PromptSearchParams{
		Query: c.Query("q"),
		Tag:   c.Query("tag"),
	}
	if license := c.Query("license_type"); license != "" {
		searchParams.LicenseType = models.LicenseType(license)
	}
	if status := c.Query("status"); status != "" {
		searchParams.Status = models.PromptStatus(status)
	}
	if authorIDStr := c.Query("author_id"); authorIDStr != "" {
		if authorID, err := uuid.Parse(authorIDStr); err == nil {
			searchParams.AuthorID = &authorID
		}
	}

	_, result, err := h.promptService.Search(searchParams, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, *result)
	utils.PaginatedResponse(c, *result)
}

// POST /prompts
func (h *PromptHandler) Register(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.RegisterPromptInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	prompt, err := h.promptService.Register(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"prompt": prompt})
}

// GET /prompts/:prompt_id
func (h *PromptHandler) Get(c *gin.Context) {
	prompt, err := h.promptService.Get(c.Param("prompt_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"prompt": prompt})
}

// GET /prompts/:prompt_id/access
func (h *PromptHandler) CheckAccess(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	allowed, err := h.promptService.CheckAccess(c.Param("prompt_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"has_access": allowed})
}

// PATCH /prompts/:prompt_id
func (h *PromptHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdatePromptInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	prompt, err := h.promptService.Update(userID, c.Param("prompt_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"prompt": prompt})
}

// POST /prompts/:prompt_id/versions
func (h *PromptHandler) CreateVersion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.VersionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	prompt, err := h.promptService.CreateVersion(userID, c.Param("prompt_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"prompt": prompt})
}

// GET /prompts/:prompt_id/versions
func (h *PromptHandler) ListVersions(c *gin.Context) {
	prompt, err := h.promptService.Get(c.Param("prompt_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"current_version": prompt.CurrentVersion,
		"version_count":   prompt.VersionCount,
		"recent_versions": prompt.RecentVersions,
	})
}

// POST /prompts/:prompt_id/content
func (h *PromptHandler) UploadContent(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	file, header, err := c.Request.FormFile("content")
	if err != nil {
		utils.BadRequestResponse(c, "Content file is required", err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadContent(c.Param("prompt_id"), file, header)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.CreatedResponse(c, gin.H{"upload": result})
}

// PUT /prompts/:prompt_id/license
func (h *PromptHandler) UpdateLicense(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateLicenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	prompt, err := h.promptService.UpdateLicense(userID, c.Param("prompt_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"prompt": prompt})
}

// PUT /prompts/:prompt_id/status
func (h *PromptHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Status models.PromptStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	prompt, err := h.promptService.UpdateStatus(userID, c.Param("prompt_id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"prompt": prompt})
}

// POST /prompts/:prompt_id/tags
func (h *PromptHandler) AddTag(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.Tag
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	prompt, err := h.promptService.AddTag(userID, c.Param("prompt_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"prompt": prompt})
}

// DELETE /prompts/:prompt_id/tags/:name
func (h *PromptHandler) RemoveTag(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prompt, err := h.promptService.RemoveTag(userID, c.Param("prompt_id"), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"prompt": prompt})
}

// POST /prompts/:prompt_id/transfer
func (h *PromptHandler) TransferOwnership(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		NewOwnerID uuid.UUID `json:"new_owner_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	prompt, err := h.promptService.TransferOwnership(userID, c.Param("prompt_id"), req.NewOwnerID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"prompt": prompt})
}

// POST /prompts/:prompt_id/fork
func (h *PromptHandler) Fork(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ForkPromptInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	fork, err := h.promptService.Fork(userID, c.Param("prompt_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"prompt": fork})
}
