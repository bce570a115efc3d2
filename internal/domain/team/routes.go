package team

import (
	"github.com/gin-gonic/gin"

	"onboardkit/internal/middleware"
)

// RegisterPublicRoutes registers register/login, which issue tokens.
func RegisterPublicRoutes(r *gin.RouterGroup, h *Handler) {
	t := r.Group("/team")
	{
		t.POST("/register", h.Register)
		t.POST("/login", h.Login)
	}
}

// RegisterRoutes registers member management under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	t := r.Group("/team")
	{
		t.GET("/members", h.List)
		t.PATCH("/members/:id/role", middleware.AdminOnly(), h.ChangeRole)
	}
}
