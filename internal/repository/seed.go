package repository

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskmanager/internal/model"
)

// EnsureSeedData creates the fixed roles and, when credentials are
// configured, an administrator account carrying the Admin role. Both steps
// are idempotent across restarts.
func EnsureSeedData(db *gorm.DB, adminEmail, adminPassword string) error {
	for _, name := range []string{model.RoleAdmin, model.RoleUser} {
		var role model.Role
		err := db.Where("name = ?", name).First(&role).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&model.Role{Name: name}).Error; err != nil {
				return fmt.Errorf("seed role %q: %w", name, err)
			}
		} else if err != nil {
			return fmt.Errorf("find role %q: %w", name, err)
		}
	}

	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	var existing model.User
	err := db.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("find admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var adminRole model.Role
	if err := db.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return fmt.Errorf("find admin role: %w", err)
	}

	admin := model.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		DisplayName:  "Administrator",
		Roles:        []model.Role{adminRole},
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	return nil
}
