package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openclave/sigil/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, info ServiceInfo) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService, info)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/verify", handlers.Verify)
	}

	// API routes
	api := router.Group("/api")
	api.GET("/status", handlers.Status)

	gated := api.Group("")
	gated.Use(AuthMiddleware(authService))
	{
		gated.GET("/protected", handlers.Protected)
		gated.GET("/user/info", handlers.UserInfo)
	}

	return router
}
