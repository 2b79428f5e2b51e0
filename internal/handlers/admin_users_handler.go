package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

// AdminUsersHandler manages back office accounts.
type AdminUsersHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAdminUsersHandler(db *gorm.DB, audit *audit.Dispatcher) *AdminUsersHandler {
	return &AdminUsersHandler{db: db, audit: audit}
}

type CreateAdminRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role"`
}

type UpdateAdminRequest struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Role     *models.Role `json:"role"`
	Password *string      `json:"password"`
}

func (h *AdminUsersHandler) List(c *gin.Context) {
	var admins []models.Admin
	if err := h.db.WithContext(c.Request.Context()).Order("created_at DESC").Find(&admins).Error; err != nil {
		httperr.Internal(c, "admin_list_failed", "Failed to fetch admin users", err)
		return
	}

	out := make([]adminView, len(admins))
	for i, a := range admins {
		out[i] = viewAdmin(a)
	}
	httpresp.OK(c, out)
}

func (h *AdminUsersHandler) Create(c *gin.Context) {
	var req CreateAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	if len(req.Password) < auth.MinPasswordLength {
		httperr.Validation(c, map[string]string{"password": "Password must be at least 6 characters long"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleAdmin
	}
	if !req.Role.Valid() {
		httperr.Validation(c, map[string]string{"role": "Role must be ADMIN or SUPER_ADMIN"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Failed to create admin user", err)
		return
	}

	admin := models.Admin{
		Name:         req.Name,
		Email:        validators.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&admin).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.BadRequest(c, "email_taken", "Email is already registered")
			return
		}
		respondError(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   "admin_created",
		Entity:   "admin",
		EntityID: &admin.ID,
	})

	httpresp.Created(c, gin.H{
		"message": "Admin user created successfully",
		"admin":   viewAdmin(admin),
	})
}

func (h *AdminUsersHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var admin models.Admin
	if err := h.db.WithContext(c.Request.Context()).First(&admin, "id = ?", id).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "admin_not_found", "Admin user not found")
			return
		}
		respondError(c, err)
		return
	}

	var req UpdateAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Role != nil && *req.Role != admin.Role && middleware.UserID(c) == id {
		httperr.BadRequest(c, "cannot_change_own_role", "Cannot modify your own role")
		return
	}

	updates := map[string]any{}
	if req.Name != nil && *req.Name != "" {
		admin.Name = *req.Name
		updates["name"] = admin.Name
	}
	if req.Email != nil && *req.Email != "" {
		admin.Email = validators.NormalizeEmail(*req.Email)
		updates["email"] = admin.Email
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			httperr.Validation(c, map[string]string{"role": "Role must be ADMIN or SUPER_ADMIN"})
			return
		}
		admin.Role = *req.Role
		updates["role"] = admin.Role
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < auth.MinPasswordLength {
			httperr.Validation(c, map[string]string{"password": "Password must be at least 6 characters long"})
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			httperr.Internal(c, "failed_to_hash_password", "Failed to update admin user", err)
			return
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				httperr.BadRequest(c, "email_taken", "Email is already registered")
				return
			}
			respondError(c, err)
			return
		}
	}

	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   "admin_updated",
		Entity:   "admin",
		EntityID: &admin.ID,
	})

	httpresp.OK(c, gin.H{
		"message": "Admin user updated successfully",
		"admin":   viewAdmin(admin),
	})
}

func (h *AdminUsersHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if middleware.UserID(c) == id {
		httperr.BadRequest(c, "cannot_delete_self", "Cannot delete your own account")
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Admin{}, "id = ?", id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "admin_not_found", "Admin user not found")
		return
	}

	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   "admin_deleted",
		Entity:   "admin",
		EntityID: &id,
	})

	httpresp.OK(c, gin.H{"message": "Admin user deleted successfully"})
}
