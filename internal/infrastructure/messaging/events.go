package messaging

import "github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"

const (
	PresenceQueue   = "presence_events"
	DeadLetterQueue = "dead_letter_queue"
)

type ParticipantEventData struct {
	Event domain.PresenceEvent `json:"event"`
}
