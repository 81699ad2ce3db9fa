package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskmanager/internal/model"
)

// TagRepository manages task tags.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// ResolveOrCreate maps each name to the user's tag with that exact name,
// creating missing ones. Input names are expected to be trimmed and deduped.
func (r *TagRepository) ResolveOrCreate(ctx context.Context, userID uint, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		tag, err := r.getOrCreate(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (r *TagRepository) getOrCreate(ctx context.Context, userID uint, name string) (*model.Tag, error) {
	var tag model.Tag
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&tag).Error
	switch {
	case err == nil:
		return &tag, nil
	case err == gorm.ErrRecordNotFound:
		tag = model.Tag{UserID: userID, Name: name}
		if err := db.Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("create tag: %w", err)
		}
		return &tag, nil
	default:
		return nil, fmt.Errorf("find tag: %w", err)
	}
}

func (r *TagRepository) ListByUser(ctx context.Context, userID uint) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
