package repository

import (
	"context"

	"gorm.io/gorm"

	"taskmanager/internal/model"
)

// RoleRepository reads the fixed role set.
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) ListAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) FindByNames(ctx context.Context, names []string) ([]model.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var roles []model.Role
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
