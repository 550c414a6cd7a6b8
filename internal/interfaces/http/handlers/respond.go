package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javimosch/gutcheck-saas/internal/domain/services"
	"github.com/javimosch/gutcheck-saas/internal/providers"
)

// respondError maps the service error taxonomy onto HTTP responses. Quota and
// validation failures carry structured data for the client's remediation UI;
// everything server-side collapses to an opaque message.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	var quotaErr *services.QuotaExceededError
	if errors.As(err, &quotaErr) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       quotaErr.Error(),
			"capability":  quotaErr.Capability,
			"usageCount":  quotaErr.UsageCount,
			"maxUsage":    quotaErr.MaxUsage,
			"needsOwnKey": quotaErr.NeedsOwnKey,
		})
		return
	}

	var configErr *services.ConfigurationError
	if errors.As(err, &configErr) {
		log.Printf("configuration error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": configErr.Message})
		return
	}

	var missingCredErr *providers.MissingCredentialError
	if errors.As(err, &missingCredErr) {
		log.Printf("configuration error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "evaluation service is not configured"})
		return
	}

	var providerErr *providers.ProviderError
	if errors.As(err, &providerErr) {
		log.Printf("provider error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream provider failed, please try again later"})
		return
	}

	var parseErr *providers.ParseError
	if errors.As(err, &parseErr) {
		log.Printf("parse error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed: the model returned an unusable response"})
		return
	}

	log.Printf("internal error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
