package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/service"
)

// SetupRouter builds the gin router with the auth endpoints and the
// protected API group.
func SetupRouter(auth *service.AuthService, tasks *service.TaskService, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	authHandlers := NewAuthHandlers(auth, log)
	taskHandlers := NewTaskHandlers(tasks, log)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandlers.Register)
		authGroup.POST("/login", authHandlers.Login)
		authGroup.POST("/refresh", authHandlers.Refresh)
		authGroup.POST("/logout", authHandlers.Logout)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware(auth, log))
	{
		api.GET("/me", authHandlers.Me)
		api.POST("/me/password", authHandlers.ChangePassword)

		api.POST("/tasks", taskHandlers.Create)
		api.GET("/tasks", taskHandlers.List)
		api.GET("/tasks/:id", taskHandlers.Get)
		api.PATCH("/tasks/:id/status", taskHandlers.UpdateStatus)
		api.POST("/tasks/:id/analyze", taskHandlers.Analyze)
	}

	return router
}
