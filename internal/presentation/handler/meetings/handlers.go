package meetings

import (
	"log"
	"net/http"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/ws"
	"github.com/google/uuid"
)

type Handler struct {
	roomManager *ws.RoomManager
	core        *ws.Core
}

func NewHandler(roomManager *ws.RoomManager, core *ws.Core) *Handler {
	return &Handler{
		roomManager: roomManager,
		core:        core,
	}
}

// ConnectHandler upgrades the request to a websocket session. All
// meeting traffic (joins, leaves, chat) arrives as envelopes on the
// socket itself; the connection is anonymous until its first
// meeting.join frame.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.roomManager.Upgrade(w, r)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := ws.NewClient(conn, uuid.NewString())

	h.roomManager.AddClient(client)

	go client.WriteMessages()
	go client.ReadMessages(h.core)

	log.Printf("Connection %s established", client.ID())
}
