package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all user-related routes (including Auth).
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		// Login is the only public route; registration is admin-gated.
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", authMiddleware, adminMiddleware, h.Register)
		authGroup.GET("/me", authMiddleware, h.Me)
		authGroup.GET("/me/bookings", authMiddleware, h.MeBookings)
		authGroup.GET("/verify", authMiddleware, h.Verify)
	}

	usersGroup := g.Group("/users")
	usersGroup.Use(authMiddleware)
	{
		usersGroup.GET("/:id", h.Get) // self or admin, checked in handler

		admin := usersGroup.Group("")
		admin.Use(adminMiddleware)
		{
			admin.GET("", h.List)
			admin.POST("", h.Create)
			admin.PATCH("/:id", h.Update)
			admin.DELETE("/:id", h.Delete)
			admin.DELETE("/:id/permanent", h.HardDelete)
		}
	}
}
