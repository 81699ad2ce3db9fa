package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/model"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Tasks    *TaskHandler
	Projects *ProjectHandler
	Calendar *CalendarHandler
	AI       *AIHandler
	Users    *UsersHandler
}

// RegisterRoutes wires all endpoints onto the engine. Everything under /api
// requires a valid session cookie.
func RegisterRoutes(r *gin.Engine, secret string, users AccountStore, h Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	api := r.Group("/api", Auth(secret, users))
	{
		api.GET("/me", h.Auth.Me)

		api.GET("/tasks", h.Tasks.List)
		api.POST("/tasks", h.Tasks.Create)
		api.GET("/tasks/:id", h.Tasks.Get)
		api.PUT("/tasks/:id", h.Tasks.Update)
		api.POST("/tasks/:id/complete", h.Tasks.Complete)
		api.DELETE("/tasks/:id", h.Tasks.Delete)

		api.GET("/projects", h.Projects.List)
		api.POST("/projects", h.Projects.Create)
		api.DELETE("/projects/:id", h.Projects.Delete)

		api.GET("/tags", h.Tasks.ListTags)
		api.GET("/calendar", h.Calendar.Month)
		api.GET("/dashboard", h.Tasks.Dashboard)

		api.POST("/ai/parse", h.AI.Parse)

		admin := api.Group("/admin", RequireRole(model.RoleAdmin))
		{
			admin.GET("/users", h.Users.List)
			admin.PUT("/users/:id/roles", h.Users.ReplaceRoles)
			admin.DELETE("/users/:id", h.Users.Delete)
			admin.GET("/roles", h.Users.ListRoles)
		}
	}
}
