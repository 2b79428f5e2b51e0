package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type AuthHandler struct {
	db      *gorm.DB
	tokens  *auth.TokenService
	revoked auth.Revocations
	audit   *audit.Dispatcher
}

func NewAuthHandler(db *gorm.DB, tokens *auth.TokenService, revoked auth.Revocations, audit *audit.Dispatcher) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, revoked: revoked, audit: audit}
}

// --------- Requests ---------

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" binding:"omitempty,email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// --------- Responses ---------

type adminView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

func viewAdmin(a models.Admin) adminView {
	return adminView{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, CreatedAt: a.CreatedAt}
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var admin models.Admin
	err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", validators.NormalizeEmail(req.Email)).
		First(&admin).Error
	if err != nil {
		if httperr.IsNotFound(err) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password")
			return
		}
		httperr.Internal(c, "internal_error", "Internal server error", err)
		return
	}

	if !auth.CheckPassword(admin.PasswordHash, req.Password) {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password")
		return
	}

	token, id, err := h.tokens.Sign(auth.Identity{ID: admin.ID, Email: admin.Email, Role: string(admin.Role)})
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not sign in", err)
		return
	}

	h.audit.Dispatch(audit.Event{
		ActorID:  &admin.ID,
		Action:   "admin_login",
		Entity:   "admin",
		EntityID: &admin.ID,
	})

	httpresp.OK(c, gin.H{
		"user":      viewAdmin(admin),
		"token":     token,
		"expiresAt": id.ExpiresAt,
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	httpresp.OK(c, gin.H{"user": viewAdmin(*admin)})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		if len(*req.Name) < 2 {
			httperr.Validation(c, map[string]string{"name": "Name must be at least 2 characters"})
			return
		}
		updates["name"] = *req.Name
		admin.Name = *req.Name
	}
	if req.Email != nil {
		admin.Email = validators.NormalizeEmail(*req.Email)
		updates["email"] = admin.Email
	}
	if req.NewPassword != "" {
		if !auth.CheckPassword(admin.PasswordHash, req.CurrentPassword) {
			httperr.BadRequest(c, "invalid_current_password", "Current password is incorrect")
			return
		}
		if len(req.NewPassword) < auth.MinPasswordLength {
			httperr.Validation(c, map[string]string{"newPassword": "Password must be at least 6 characters"})
			return
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			httperr.Internal(c, "failed_to_hash_password", "Could not update password", err)
			return
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(c.Request.Context()).Model(admin).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
	}

	h.audit.Dispatch(audit.Event{
		ActorID:  &admin.ID,
		Action:   "profile_updated",
		Entity:   "admin",
		EntityID: &admin.ID,
	})

	httpresp.OK(c, gin.H{"user": viewAdmin(*admin)})
}

// Logout revokes the presented token until it would have expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	id, ok := middleware.Identity(c)
	if !ok {
		httperr.Unauthorized(c, "unauthorized", "Not authorized")
		return
	}

	ttl := time.Until(id.ExpiresAt)
	if err := h.revoked.Revoke(c.Request.Context(), id.TokenID, ttl); err != nil {
		logger.From(c).Error("token revocation failed", zap.Error(err))
		httperr.Internal(c, "logout_failed", "Could not sign out", err)
		return
	}

	httpresp.OK(c, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Verify(c *gin.Context) {
	id, _ := middleware.Identity(c)
	httpresp.OK(c, gin.H{
		"valid": true,
		"user": gin.H{
			"id":    id.ID,
			"email": id.Email,
			"role":  id.Role,
		},
		"expiresAt": id.ExpiresAt,
	})
}

func (h *AuthHandler) currentAdmin(c *gin.Context) (*models.Admin, bool) {
	var admin models.Admin
	err := h.db.WithContext(c.Request.Context()).First(&admin, "id = ?", middleware.UserID(c)).Error
	if err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "user_not_found", "User not found")
			return nil, false
		}
		httperr.Internal(c, "internal_error", "Internal server error", err)
		return nil, false
	}
	return &admin, true
}
