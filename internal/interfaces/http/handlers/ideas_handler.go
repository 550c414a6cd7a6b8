package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javimosch/gutcheck-saas/internal/domain/services"
	"github.com/javimosch/gutcheck-saas/internal/interfaces/http/middleware"
)

type IdeasHandler struct {
	ideas services.IdeaService
}

func NewIdeasHandler(ideas services.IdeaService) *IdeasHandler {
	return &IdeasHandler{ideas: ideas}
}

func (h *IdeasHandler) Submit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req services.SubmitIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	idea, err := h.ideas.Submit(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "idea": idea})
}

func (h *IdeasHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ideas, err := h.ideas.List(c.Request.Context(), user, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "ideas": ideas})
}

func (h *IdeasHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	idea, err := h.ideas.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "idea": idea})
}

func (h *IdeasHandler) Analyze(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	idea, err := h.ideas.Analyze(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "idea": idea})
}

type updateNotesRequest struct {
	UserNotes string `json:"userNotes"`
}

func (h *IdeasHandler) UpdateNotes(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	idea, err := h.ideas.UpdateNotes(c.Request.Context(), user, c.Param("id"), req.UserNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "idea": idea})
}

func (h *IdeasHandler) Archive(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	idea, err := h.ideas.Archive(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "idea": idea})
}
