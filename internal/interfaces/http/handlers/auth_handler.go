package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
	"github.com/javimosch/gutcheck-saas/internal/domain/services"
	"github.com/javimosch/gutcheck-saas/internal/interfaces/http/middleware"
	"github.com/javimosch/gutcheck-saas/internal/validate"
)

type AuthHandler struct {
	accounts services.AccountService
	quota    services.QuotaService
}

func NewAuthHandler(accounts services.AccountService, quota services.QuotaService) *AuthHandler {
	return &AuthHandler{accounts: accounts, quota: quota}
}

type registerRequest struct {
	Email   string `json:"email"`
	ByokKey string `json:"byokKey"`
}

// Register is the idempotent find-or-create entry point. The response carries
// the encoded email the client stores as its identifier.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.accounts.FindOrCreate(c.Request.Context(), req.Email, c.ClientIP(), req.ByokKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user": gin.H{
			"email":               validate.EncodeEmail(user.Email),
			"evaluationCount":     user.EvaluationCount,
			"transcriptionCount":  user.TranscriptionCount,
			"hasCustomKey":        user.HasKey(models.CapabilityEvaluation),
			"hasTranscriptionKey": user.HasKey(models.CapabilityTranscription),
		},
	})
}

type checkRequest struct {
	Email string `json:"email"`
}

// Check reports both quota statuses for an identity without mutating it.
func (h *AuthHandler) Check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	email := req.Email
	if decoded, err := validate.DecodeEmail(email); err == nil && validate.IsValidEmail(decoded) {
		email = decoded
	}
	if !validate.IsValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
		return
	}

	user, err := h.accounts.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	evaluation := h.quota.CheckUser(user, models.CapabilityEvaluation)
	transcription := h.quota.CheckUser(user, models.CapabilityTranscription)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"allowed":             evaluation.Allowed,
		"usageCount":          evaluation.UsageCount,
		"maxUsage":            evaluation.MaxUsage,
		"transcriptionCount":  transcription.UsageCount,
		"maxTranscription":    transcription.MaxUsage,
		"hasCustomKey":        user.HasKey(models.CapabilityEvaluation),
		"hasTranscriptionKey": user.HasKey(models.CapabilityTranscription),
		"preferredModel":      user.PreferredModel,
	})
}

func (h *AuthHandler) GetSettings(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	transcription := h.quota.CheckUser(user, models.CapabilityTranscription)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"hasApiKey":           user.HasKey(models.CapabilityEvaluation),
		"hasTranscriptionKey": user.HasKey(models.CapabilityTranscription),
		"preferredModel":      user.PreferredModel,
		"transcriptionCount":  transcription.UsageCount,
		"maxTranscription":    transcription.MaxUsage,
	})
}

// UpdateSettings sets or clears each credential independently: a missing
// field is left alone, an empty string removes the stored value.
func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.accounts.UpdateSettings(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"hasCustomKey":        updated.HasKey(models.CapabilityEvaluation),
		"hasTranscriptionKey": updated.HasKey(models.CapabilityTranscription),
		"preferredModel":      updated.PreferredModel,
	})
}
