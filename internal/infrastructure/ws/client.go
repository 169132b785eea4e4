package ws

import (
	"encoding/json"
	"log"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
	"github.com/gorilla/websocket"
)

// Client is one live transport session. ID doubles as the presence
// registry's connection id.
type Client struct {
	conn    *connWrapper
	Message chan *WSMessage
	id      string
}

func NewClient(conn *websocket.Conn, id string) *Client {
	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *WSMessage, 64), // buffered to avoid dead-locks on slow clients
		id:      id,
	}
}

func (c *Client) ID() string {
	return c.id
}

// ReadMessages pumps inbound frames into the core until the connection
// closes, then signals a disconnect.
func (c *Client) ReadMessages(core *Core) {
	defer func() {
		core.Disconnect() <- c
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (conn %s): %v", c.id, err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Malformed frames are dropped, same as any other invalid input.
			continue
		}

		switch env.Event {
		case MeetingJoin:
			var p JoinPayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			core.Join() <- joinRequest{client: c, payload: p}

		case MeetingLeave:
			var p LeavePayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			core.Leave() <- leaveRequest{client: c, roomID: p.RoomID}

		case ChatMessage:
			var p domain.ChatMessage
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			core.Chat() <- chatRequest{client: c, message: p}
		}
	}
}

// WriteMessages drains the outbound channel onto the socket.
func (c *Client) WriteMessages() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.Message {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error (conn %s): %v", c.id, err)
			break
		}
	}
}
