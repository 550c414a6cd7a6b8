package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javimosch/gutcheck-saas/internal/domain/models"
	"github.com/javimosch/gutcheck-saas/internal/domain/services"
	"github.com/javimosch/gutcheck-saas/internal/validate"
)

const userContextKey = "current_user"

// AuthContext resolves the caller's identity once at the boundary and hangs
// the User on the request context. The identity is an email carried in the
// X-User-Email header (or ?email=), optionally base64-encoded by the client's
// local storage — an opaque identifier transform, not a credential.
func AuthContext(accounts services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader("X-User-Email")
		if email == "" {
			email = c.Query("email")
		}
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			c.Abort()
			return
		}

		if decoded, err := validate.DecodeEmail(email); err == nil && validate.IsValidEmail(decoded) {
			email = decoded
		}

		user, err := accounts.FindOrCreate(c.Request.Context(), email, c.ClientIP(), "")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by AuthContext; nil when the
// middleware did not run.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
