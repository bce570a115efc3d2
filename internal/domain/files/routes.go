package files

import "github.com/gin-gonic/gin"

// RegisterRoutes registers file routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	f := r.Group("/files")
	{
		f.POST("", h.Upload)
		f.POST("/batch", h.UploadBatch)
		f.GET("", h.List)
		f.POST("/sign-url", h.SignURL)
		f.POST("/delete", h.Delete)
		f.GET("/health", h.Health)
	}
}
