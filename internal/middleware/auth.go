package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"
	ContextIdentity  = "identity"
)

// Auth requires a valid, unrevoked bearer token and stores the identity in the context.
func Auth(tokens *auth.TokenService, revoked auth.Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Not authorized, no token")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			httperr.Unauthorized(c, "invalid_authorization_header", "Not authorized, malformed token")
			return
		}

		id, err := tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				httperr.Unauthorized(c, "token_expired", "Token expired")
				return
			}
			httperr.Unauthorized(c, "invalid_token", "Invalid token")
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), id.TokenID)
			if err != nil {
				logger.From(c).Warn("revocation lookup failed", zap.Error(err))
			}
			if isRevoked {
				httperr.Unauthorized(c, "token_revoked", "Token has been revoked")
				return
			}
		}

		c.Set(ContextIdentity, id)
		c.Set(ContextUserID, id.ID)
		c.Set(ContextUserEmail, id.Email)
		c.Set(ContextUserRole, id.Role)

		c.Next()
	}
}

// AdminOnly must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.Role(c.GetString(ContextUserRole)).Valid() {
			httperr.Forbidden(c, "forbidden", "Access denied. Admin privileges required.")
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func Identity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
