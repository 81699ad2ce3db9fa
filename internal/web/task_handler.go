package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
)

// TaskService is the application surface the task endpoints call into.
type TaskService interface {
	CreateTask(ctx context.Context, user *model.User, input service.TaskInput) ([]model.Task, error)
	GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error)
	ListTasks(ctx context.Context, user *model.User, filter repository.TaskFilter) ([]model.Task, error)
	ListTasksBetween(ctx context.Context, user *model.User, from, to time.Time) ([]model.Task, error)
	ListTags(ctx context.Context, user *model.User) ([]model.Tag, error)
	UpdateTask(ctx context.Context, user *model.User, taskID uint, input service.UpdateInput) (*model.Task, error)
	CompleteTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error)
	DeleteTask(ctx context.Context, user *model.User, taskID uint) error
	CountTasks(ctx context.Context, user *model.User) (repository.TaskCounts, error)
}

// TaskHandler serves the task CRUD endpoints.
type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title             string     `json:"title" binding:"required"`
	Description       string     `json:"description"`
	Priority          string     `json:"priority"`
	Tags              []string   `json:"tags"`
	ProjectID         *uint      `json:"projectId"`
	ParentTaskID      *uint      `json:"parentTaskId"`
	RecurrenceRule    string     `json:"recurrenceRule"`
	DueDate           *time.Time `json:"dueDate"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate"`
	ReminderTime      *time.Time `json:"reminderTime"`
}

type updateTaskRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority"`
	Tags         []string   `json:"tags"`
	ProjectID    *uint      `json:"projectId"`
	DueDate      *time.Time `json:"dueDate"`
	ReminderTime *time.Time `json:"reminderTime"`
}

type taskResponse struct {
	ID                uint       `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	RecurrenceRule    string     `json:"recurrenceRule,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate,omitempty"`
	ReminderTime      *time.Time `json:"reminderTime,omitempty"`
	IsReminded        bool       `json:"isReminded"`
	ProjectID         *uint      `json:"projectId,omitempty"`
	ParentTaskID      *uint      `json:"parentTaskId,omitempty"`
	Tags              []string   `json:"tags"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func (h *TaskHandler) List(c *gin.Context) {
	user := currentUser(c)

	filter := repository.TaskFilter{
		Status: c.Query("status"),
		Tag:    c.Query("tag"),
		Search: c.Query("q"),
		SortBy: c.Query("sort"),
	}
	if raw := c.Query("projectId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
			return
		}
		projectID := uint(id)
		filter.ProjectID = &projectID
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), user, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tasks"})
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (h *TaskHandler) Create(c *gin.Context) {
	user := currentUser(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := h.tasks.CreateTask(c.Request.Context(), user, service.TaskInput{
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		TagNames:          req.Tags,
		ProjectID:         req.ProjectID,
		ParentTaskID:      req.ParentTaskID,
		RecurrenceRule:    req.RecurrenceRule,
		DueDate:           req.DueDate,
		RecurrenceEndDate: req.RecurrenceEndDate,
		ReminderTime:      req.ReminderTime,
	})
	if err != nil {
		c.JSON(statusForTaskError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponses(tasks))
}

func (h *TaskHandler) Get(c *gin.Context) {
	user := currentUser(c)
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), user, taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(*task))
}

func (h *TaskHandler) Update(c *gin.Context) {
	user := currentUser(c)
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), user, taskID, service.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		TagNames:     req.Tags,
		ProjectID:    req.ProjectID,
		DueDate:      req.DueDate,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		c.JSON(statusForTaskError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(*task))
}

func (h *TaskHandler) Complete(c *gin.Context) {
	user := currentUser(c)
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.tasks.CompleteTask(c.Request.Context(), user, taskID)
	if err != nil {
		c.JSON(statusForTaskError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(*task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), user, taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete task"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) ListTags(c *gin.Context) {
	user := currentUser(c)

	tags, err := h.tasks.ListTags(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tags"})
		return
	}

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	c.JSON(http.StatusOK, gin.H{"tags": names})
}

// Dashboard returns the task counters shown on the landing page.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	user := currentUser(c)

	counts, err := h.tasks.CountTasks(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load dashboard"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return uint(id), true
}

func statusForTaskError(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrTitleTooLong),
		errors.Is(err, service.ErrEndBeforeStart),
		errors.Is(err, service.ErrTooManyOccurrences):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toTaskResponses(tasks []model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	return out
}

func toTaskResponse(task model.Task) taskResponse {
	tags := make([]string, 0, len(task.Tags))
	for _, tag := range task.Tags {
		tags = append(tags, tag.Name)
	}
	return taskResponse{
		ID:                task.ID,
		Title:             task.Title,
		Description:       task.Description,
		Status:            task.Status,
		Priority:          task.Priority,
		DueDate:           task.DueDate,
		RecurrenceRule:    task.RecurrenceRule,
		RecurrenceEndDate: task.RecurrenceEndDate,
		ReminderTime:      task.ReminderTime,
		IsReminded:        task.IsReminded,
		ProjectID:         task.ProjectID,
		ParentTaskID:      task.ParentTaskID,
		Tags:              tags,
		CreatedAt:         task.CreatedAt,
	}
}
