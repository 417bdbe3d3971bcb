package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/khaledelhady44/The-boy-who-lived/internal/handler"
	"github.com/khaledelhady44/The-boy-who-lived/internal/middleware"
)

// Setup sets up all routes
func Setup(
	h *server.Hertz,
	userHandler *handler.UserHandler,
	chatHandler *handler.ChatHandler,
	wsHandler *handler.WSHandler,
	healthHandler *handler.HealthHandler,
) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger())
	h.Use(middleware.CORS())

	// Health check routes (no authentication required)
	h.GET("/ping", healthHandler.Ping)
	h.GET("/health/ready", healthHandler.Readiness)
	h.GET("/health/live", healthHandler.Liveness)

	// API v1 routes
	apiV1 := h.Group("/api/v1")
	{
		// ============ Public routes (no authentication required) ============
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/refresh", userHandler.RefreshToken)
		}

		// The websocket route does its own credential check after the
		// upgrade, so a bad token closes with a policy violation instead
		// of failing the HTTP handshake.
		apiV1.GET("/chats/:id/send", wsHandler.Chat)

		// ============ Protected routes (JWT authentication required) ============
		authorized := apiV1.Group("")
		authorized.Use(userHandler.AuthMiddleware())
		{
			// User management
			users := authorized.Group("/users")
			{
				users.GET("/me", userHandler.GetCurrentUser) // Get current user info
			}

			// Chat management
			chats := authorized.Group("/chats")
			{
				chats.POST("", chatHandler.CreateChat)
				chats.GET("", chatHandler.ListChats)
				chats.GET("/:id/messages", chatHandler.GetHistory)
			}
		}
	}
}
