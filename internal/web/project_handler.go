package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/model"
)

// ProjectStore is the persistence surface the project endpoints need.
type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	ListByUser(ctx context.Context, userID uint) ([]model.Project, error)
	Delete(ctx context.Context, userID, projectID uint) error
}

// ProjectHandler serves the project endpoints.
type ProjectHandler struct {
	projects ProjectStore
}

func NewProjectHandler(projects ProjectStore) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

type projectResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *ProjectHandler) List(c *gin.Context) {
	user := currentUser(c)

	projects, err := h.projects.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list projects"})
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for _, project := range projects {
		out = append(out, projectResponse{ID: project.ID, Name: project.Name, CreatedAt: project.CreatedAt})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user := currentUser(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := model.Project{UserID: user.ID, Name: strings.TrimSpace(req.Name)}
	if err := h.projects.Create(c.Request.Context(), &project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create project"})
		return
	}
	c.JSON(http.StatusCreated, projectResponse{ID: project.ID, Name: project.Name, CreatedAt: project.CreatedAt})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.projects.Delete(c.Request.Context(), user.ID, uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete project"})
		return
	}
	c.Status(http.StatusNoContent)
}
