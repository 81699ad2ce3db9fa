package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrParentNotFound  = errors.New("parent task not found")
)

// TaskStore is the persistence surface the task service relies on.
type TaskStore interface {
	CreateAll(ctx context.Context, tasks []model.Task) error
	FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error)
	ListByUser(ctx context.Context, userID uint, filter repository.TaskFilter) ([]model.Task, error)
	ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID, taskID uint) error
	Counts(ctx context.Context, userID uint) (repository.TaskCounts, error)
}

// TagStore resolves tag names to owned tags, creating missing ones.
type TagStore interface {
	ResolveOrCreate(ctx context.Context, userID uint, names []string) ([]model.Tag, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Tag, error)
}

// ProjectStore checks project ownership for task placement.
type ProjectStore interface {
	FindByID(ctx context.Context, userID, projectID uint) (*model.Project, error)
}

// TaskInput represents data required to create a task (or a recurring
// series of them).
type TaskInput struct {
	Title             string
	Description       string
	Priority          string
	TagNames          []string
	ProjectID         *uint
	ParentTaskID      *uint
	RecurrenceRule    string
	DueDate           *time.Time
	RecurrenceEndDate *time.Time
	ReminderTime      *time.Time
}

// UpdateInput carries editable task fields.
type UpdateInput struct {
	Title        string
	Description  string
	Priority     string
	TagNames     []string
	ProjectID    *uint
	DueDate      *time.Time
	ReminderTime *time.Time
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskStore    TaskStore
	tagStore     TagStore
	projectStore ProjectStore
}

func NewTaskService(taskStore TaskStore, tagStore TagStore, projectStore ProjectStore) *TaskService {
	return &TaskService{taskStore: taskStore, tagStore: tagStore, projectStore: projectStore}
}

// CreateTask persists the task described by input. When a recurrence rule
// and both dates are present the whole series is generated up front and
// written in one atomic batch; tag names are resolved once and every
// occurrence gets the same tag set.
func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) ([]model.Task, error) {
	if input.ProjectID != nil {
		if _, err := s.projectStore.FindByID(ctx, user.ID, *input.ProjectID); err != nil {
			return nil, ErrProjectNotFound
		}
	}
	if input.ParentTaskID != nil {
		if _, err := s.taskStore.FindByID(ctx, user.ID, *input.ParentTaskID); err != nil {
			return nil, ErrParentNotFound
		}
	}

	tasks, err := Expand(Template{
		Title:             input.Title,
		Description:       input.Description,
		Priority:          normalizePriority(input.Priority),
		ProjectID:         input.ProjectID,
		ParentTaskID:      input.ParentTaskID,
		RecurrenceRule:    input.RecurrenceRule,
		StartDueDate:      input.DueDate,
		RecurrenceEndDate: input.RecurrenceEndDate,
		ReminderTime:      normalizeUTC(input.ReminderTime),
	})
	if err != nil {
		return nil, err
	}

	tags, err := s.tagStore.ResolveOrCreate(ctx, user.ID, normalizeTagNames(input.TagNames))
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i].UserID = user.ID
		tasks[i].Tags = tags
	}

	if err := s.taskStore.CreateAll(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	return s.taskStore.FindByID(ctx, user.ID, taskID)
}

func (s *TaskService) ListTasks(ctx context.Context, user *model.User, filter repository.TaskFilter) ([]model.Task, error) {
	return s.taskStore.ListByUser(ctx, user.ID, filter)
}

func (s *TaskService) ListTasksBetween(ctx context.Context, user *model.User, from, to time.Time) ([]model.Task, error) {
	return s.taskStore.ListBetween(ctx, user.ID, from, to)
}

func (s *TaskService) ListTags(ctx context.Context, user *model.User) ([]model.Tag, error) {
	return s.tagStore.ListByUser(ctx, user.ID)
}

// CountTasks summarizes the user's tasks for the dashboard.
func (s *TaskService) CountTasks(ctx context.Context, user *model.User) (repository.TaskCounts, error) {
	return s.taskStore.Counts(ctx, user.ID)
}

// UpdateTask edits a single task. Changing the reminder time re-arms the
// reminder by clearing is_reminded; the sweeper itself never clears it.
func (s *TaskService) UpdateTask(ctx context.Context, user *model.User, taskID uint, input UpdateInput) (*model.Task, error) {
	task, err := s.taskStore.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if utf8.RuneCountInString(input.Title) > 200 {
		return nil, ErrTitleTooLong
	}
	if input.ProjectID != nil {
		if _, err := s.projectStore.FindByID(ctx, user.ID, *input.ProjectID); err != nil {
			return nil, ErrProjectNotFound
		}
	}

	tags, err := s.tagStore.ResolveOrCreate(ctx, user.ID, normalizeTagNames(input.TagNames))
	if err != nil {
		return nil, err
	}

	reminder := normalizeUTC(input.ReminderTime)
	if !sameTime(task.ReminderTime, reminder) {
		task.IsReminded = false
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Priority = normalizePriority(input.Priority)
	task.ProjectID = input.ProjectID
	task.DueDate = input.DueDate
	task.ReminderTime = reminder
	task.Tags = tags

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask marks a task as done. Completed tasks drop out of reminder
// sweeps even if their flag was never set.
func (s *TaskService) CompleteTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskStore.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	task.Status = model.StatusCompleted
	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	return s.taskStore.Delete(ctx, user.ID, taskID)
}

// normalizeTagNames trims and dedupes, preserving first-seen order. Matching
// stays case-sensitive.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func normalizePriority(priority string) string {
	switch priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		return priority
	default:
		return model.PriorityNone
	}
}

func normalizeUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
