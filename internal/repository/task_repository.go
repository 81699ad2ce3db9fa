package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskmanager/internal/model"
)

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status    string
	ProjectID *uint
	Tag       string
	Search    string
	SortBy    string // "due_date" or "created_at" (default)
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateAll inserts a batch of tasks in one transaction. Either every row
// (including tag associations) is committed or none are.
func (r *TaskRepository) CreateAll(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create tasks: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Tags").
		Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID uint, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Preload("Tags").Where("tasks.user_id = ?", userID)

	if filter.Status != "" {
		q = q.Where("tasks.status = ?", filter.Status)
	}
	if filter.ProjectID != nil {
		q = q.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("tasks.title LIKE ? OR tasks.description LIKE ?", pattern, pattern)
	}
	if filter.Tag != "" {
		q = q.Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
			Joins("JOIN tags ON tags.id = task_tags.tag_id").
			Where("tags.name = ?", filter.Tag)
	}

	switch filter.SortBy {
	case "due_date":
		q = q.Order("due_date IS NULL, due_date ASC")
	default:
		q = q.Order("created_at DESC")
	}

	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListBetween returns the user's tasks due inside [from, to], for the
// calendar view.
func (r *TaskRepository) ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Tags").
		Where("user_id = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ?", userID, from, to).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		return tx.Model(task).Association("Tags").Replace(task.Tags)
	})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// TaskCounts summarizes a user's tasks for the dashboard.
type TaskCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

func (r *TaskRepository) Counts(ctx context.Context, userID uint) (TaskCounts, error) {
	var rows []struct {
		Status string
		N      int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("status, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return TaskCounts{}, err
	}

	var counts TaskCounts
	for _, row := range rows {
		counts.Total += row.N
		switch row.Status {
		case model.StatusPending:
			counts.Pending = row.N
		case model.StatusCompleted:
			counts.Completed = row.N
		}
	}
	return counts, nil
}

// FindDue returns tasks whose reminder has elapsed and that have not been
// notified yet. Completed tasks are excluded regardless of their flag.
func (r *TaskRepository) FindDue(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("reminder_time IS NOT NULL AND reminder_time <= ? AND status = ? AND is_reminded = ?",
			now, model.StatusPending, false).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkNotified flips is_reminded for the given tasks in one statement.
func (r *TaskRepository) MarkNotified(ctx context.Context, taskIDs []uint) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id IN ?", taskIDs).
		Update("is_reminded", true).Error; err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}
