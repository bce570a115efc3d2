package progress

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"onboardkit/internal/middleware"
	"onboardkit/internal/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	// origin is already enforced by the CORS middleware for the rest of the
	// API; the socket carries no sensitive payload beyond progress counters
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Connect godoc
// @Summary Open the upload progress feed
// @Tags Progress
// @Security BearerAuth
// @Router /ws/progress [get]
func (h *Handler) Connect(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed user_id=%d error=%v", userID, err)
		return
	}

	h.hub.Register(userID, conn)

	// drain control frames until the client goes away
	go func() {
		defer h.hub.Unregister(userID)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// RegisterRoutes registers the websocket endpoint under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/ws/progress", h.Connect)
}
