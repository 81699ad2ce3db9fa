package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/model"
)

// UserAdminStore is the account surface the admin endpoints need beyond
// AccountStore.
type UserAdminStore interface {
	AccountStore
	ListAll(ctx context.Context) ([]model.User, error)
	ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error
	Delete(ctx context.Context, id uint) error
}

// UsersHandler serves the admin-only account management endpoints.
type UsersHandler struct {
	users UserAdminStore
	roles RoleStore
}

func NewUsersHandler(users UserAdminStore, roles RoleStore) *UsersHandler {
	return &UsersHandler{users: users, roles: roles}
}

type replaceRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.users.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// ReplaceRoles swaps a user's role set wholesale. Unknown role names are
// rejected rather than silently dropped.
func (h *UsersHandler) ReplaceRoles(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	var req replaceRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	roles, err := h.roles.FindByNames(c.Request.Context(), req.Roles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve roles"})
		return
	}
	if len(roles) != len(req.Roles) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role name"})
		return
	}

	if err := h.users.ReplaceRoles(c.Request.Context(), user, roles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update roles"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete removes an account and everything it owns. Admins cannot delete
// themselves.
func (h *UsersHandler) Delete(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}
	if actor := currentUser(c); actor != nil && actor.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	if _, err := h.users.FindByID(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UsersHandler) ListRoles(c *gin.Context) {
	roles, err := h.roles.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list roles"})
		return
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	c.JSON(http.StatusOK, gin.H{"roles": names})
}
