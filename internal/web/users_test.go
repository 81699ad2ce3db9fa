package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskmanager/internal/model"
)

func adminUser() *model.User {
	return &model.User{
		ID:    1,
		Email: "admin@example.com",
		Roles: []model.Role{{ID: 1, Name: model.RoleAdmin}},
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := &accountStoreStub{
		user:      &model.User{ID: 11, Email: "a@example.com"},
		createErr: fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey),
	}

	r := gin.New()
	RegisterRoutes(r, testSecret, users, Handlers{
		Auth:     NewAuthHandler(users, roleStoreStub{}, testSecret),
		Tasks:    NewTaskHandler(nil),
		Projects: NewProjectHandler(nil),
		Calendar: NewCalendarHandler(nil, nil),
		AI:       NewAIHandler(nil),
		Users:    NewUsersHandler(users, roleStoreStub{}),
	})

	body := `{"email":"a@example.com","password":"hunter2hunter2"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminRoutes_ForbiddenWithoutAdminRole(t *testing.T) {
	user := &model.User{ID: 11, Email: "a@example.com", Roles: []model.Role{{ID: 2, Name: model.RoleUser}}}
	r, cookie := setupRouterFor(t, new(taskServiceMock), user)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutes_ListUsers(t *testing.T) {
	r, cookie := setupRouterFor(t, new(taskServiceMock), adminUser())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got []userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "admin@example.com", got[0].Email)
	require.Equal(t, []string{model.RoleAdmin}, got[0].Roles)
}

func TestAdminRoutes_ReplaceRoles(t *testing.T) {
	r, cookie := setupRouterFor(t, new(taskServiceMock), adminUser())

	body := `{"roles":["Admin","User"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/1/roles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.ElementsMatch(t, []string{model.RoleAdmin, model.RoleUser}, got.Roles)
}

func TestAdminRoutes_ReplaceRoles_UnknownRoleRejected(t *testing.T) {
	r, cookie := setupRouterFor(t, new(taskServiceMock), adminUser())

	body := `{"roles":["Superuser"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/1/roles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes_CannotDeleteOwnAccount(t *testing.T) {
	r, cookie := setupRouterFor(t, new(taskServiceMock), adminUser())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/1", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireRole_NoUserInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/guarded", RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestHasRole(t *testing.T) {
	user := adminUser()
	require.True(t, user.HasRole(model.RoleAdmin))
	require.False(t, user.HasRole(model.RoleUser))

	var none model.User
	require.False(t, none.HasRole(model.RoleAdmin))
}
