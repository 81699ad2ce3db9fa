package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskmanager/internal/model"
)

// ProjectRepository handles CRUD for projects.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID uint) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, userID, projectID uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, projectID).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project and detaches its tasks.
func (r *ProjectRepository) Delete(ctx context.Context, userID, projectID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).
			Where("user_id = ? AND project_id = ?", userID, projectID).
			Update("project_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND id = ?", userID, projectID).Delete(&model.Project{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
