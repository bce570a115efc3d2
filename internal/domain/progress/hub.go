package progress

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one upload progress update pushed to the uploading user.
type Event struct {
	FileName    string `json:"file_name"`
	Transferred int64  `json:"transferred"`
	Total       int64  `json:"total"`
	Percent     int    `json:"percent"`
}

// Hub tracks one websocket connection per user. A newer connection replaces
// the older one.
type Hub struct {
	connections map[int64]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*websocket.Conn),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[userID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[userID] = conn
}

func (h *Hub) Unregister(userID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[userID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, userID)
	}
}

// Send pushes an event to the user's connection if one is open. Returns
// false when the user has no live connection or the write failed.
func (h *Hub) Send(userID int64, ev Event) bool {
	h.mutex.RLock()
	conn, exists := h.connections[userID]
	h.mutex.RUnlock()

	if !exists || conn == nil {
		return false
	}

	if err := conn.WriteJSON(ev); err != nil {
		h.Unregister(userID)
		return false
	}

	return true
}

// Reporter builds a progress callback that pushes events for fileName to
// userID. Percent is clamped to [0,100].
func (h *Hub) Reporter(userID int64, fileName string) func(transferred, total int64) {
	return func(transferred, total int64) {
		percent := 0
		if total > 0 {
			percent = int(transferred * 100 / total)
		}
		if percent > 100 {
			percent = 100
		}
		h.Send(userID, Event{
			FileName:    fileName,
			Transferred: transferred,
			Total:       total,
			Percent:     percent,
		})
	}
}
