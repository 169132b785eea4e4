package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/metrics"
	"github.com/gorilla/websocket"
)

// RoomManager tracks live clients and the broadcast group of each room. It
// implements the presence layer's Broadcaster contract.
type RoomManager struct {
	clients map[string]*Client            // connID -> client
	rooms   map[string]map[string]*Client // roomID -> connID -> client
	mu      sync.RWMutex

	upgrader websocket.Upgrader
}

func NewRoomManager(allowedOrigins []string) *RoomManager {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return &RoomManager{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

func (rm *RoomManager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return rm.upgrader.Upgrade(w, r, nil)
}

func (rm *RoomManager) AddClient(cl *Client) {
	rm.mu.Lock()
	rm.clients[cl.ID()] = cl
	rm.mu.Unlock()

	metrics.ConnectionsActive.Inc()
}

// RemoveClient drops the client from every broadcast group, closes its
// outbound channel and forgets it.
func (rm *RoomManager) RemoveClient(cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, ok := rm.clients[cl.ID()]; !ok {
		return
	}
	delete(rm.clients, cl.ID())

	for _, group := range rm.rooms {
		delete(group, cl.ID())
	}

	close(cl.Message)
	metrics.ConnectionsActive.Dec()
}

// Attach adds a connection to a room's broadcast group.
func (rm *RoomManager) Attach(roomID, connID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cl, ok := rm.clients[connID]
	if !ok {
		return
	}

	group, ok := rm.rooms[roomID]
	if !ok {
		group = make(map[string]*Client)
		rm.rooms[roomID] = group
	}
	group[connID] = cl
}

// Detach removes a connection from one room's broadcast group only; the
// connection itself stays registered.
func (rm *RoomManager) Detach(roomID, connID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if group, ok := rm.rooms[roomID]; ok {
		delete(group, connID)
	}
}

func (rm *RoomManager) BroadcastMembers(roomID string, members []domain.Member) {
	rm.broadcast(roomID, NewMeetingMembers(roomID, members))
}

func (rm *RoomManager) BroadcastChat(roomID string, msg domain.RoomChatMessage) {
	rm.broadcast(roomID, NewChatMessage(roomID, msg))
}

func (rm *RoomManager) broadcast(roomID string, msg *WSMessage) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	for _, cl := range rm.rooms[roomID] {
		select {
		case cl.Message <- msg:
		default:
			// Client is too slow, drop the message
			log.Printf("client %s buffer full, dropping message", cl.ID())
		}
	}
}
