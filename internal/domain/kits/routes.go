package kits

import "github.com/gin-gonic/gin"

// RegisterRoutes registers kit routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	kits := r.Group("/kits")
	{
		kits.POST("", h.CreateKit)
		kits.GET("", h.ListKits)
		kits.GET("/:id", h.GetKit)
		kits.POST("/:id/publish", h.PublishKit)
		kits.DELETE("/:id", h.DeleteKit)

		kits.POST("/:id/steps", h.AddStep)
		kits.GET("/:id/steps", h.ListSteps)
		kits.DELETE("/:id/steps/:stepId", h.DeleteStep)

		kits.POST("/:id/clients", h.InviteClient)
		kits.GET("/:id/clients", h.ListClients)
		kits.DELETE("/:id/clients/:clientId", h.RemoveClient)
	}
}
