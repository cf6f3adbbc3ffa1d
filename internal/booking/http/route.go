package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, managerMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/availability", h.Availability)
		group.GET("/usage-summary", managerMiddleware, h.UsageSummary)
		group.GET("/grouped-by-user", managerMiddleware, h.GroupedByUser)
		group.GET("/:id", h.Get)
		group.DELETE("/:id", h.Delete)
	}
}
