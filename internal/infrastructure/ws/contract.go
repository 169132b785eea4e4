package ws

import (
	"encoding/json"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
)

// Envelope is the wire framing for inbound events.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Payload structs
type JoinPayload struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
	Photo  string `json:"photo,omitempty"`
}

type LeavePayload struct {
	RoomID string `json:"roomId"`
}

type MemberListPayload struct {
	Members []domain.Member `json:"members"`
}

// WSMessage is the outbound frame sent to clients.
type WSMessage struct {
	Event  string `json:"event"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data"`
}

func NewMeetingMembers(roomID string, members []domain.Member) *WSMessage {
	return &WSMessage{
		Event:  MeetingMembers,
		RoomID: roomID,
		Data:   MemberListPayload{Members: members},
	}
}

func NewChatMessage(roomID string, msg domain.RoomChatMessage) *WSMessage {
	return &WSMessage{
		Event:  ChatMessage,
		RoomID: roomID,
		Data:   msg,
	}
}
