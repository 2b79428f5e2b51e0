package db

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// SeedAdmins creates the default ADMIN and SUPER_ADMIN accounts on an empty admins table.
func SeedAdmins(db *gorm.DB, password string) error {
	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	admins := []models.Admin{
		{Name: "Admin", Email: "admin@detoxwellness.com", PasswordHash: string(hash), Role: models.RoleAdmin},
		{Name: "Super Admin", Email: "superadmin@detoxwellness.com", PasswordHash: string(hash), Role: models.RoleSuperAdmin},
	}
	if err := db.Create(&admins).Error; err != nil {
		return fmt.Errorf("seed: create admins: %w", err)
	}
	return nil
}
