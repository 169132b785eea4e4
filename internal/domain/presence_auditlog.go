package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PresenceEventType string

const (
	EventParticipantJoined PresenceEventType = "participant_joined"
	EventParticipantLeft   PresenceEventType = "participant_left"
)

type PresenceAuditLog struct {
	ID        string            `bson:"_id" json:"id"`
	MeetingID string            `bson:"meeting_id" json:"meetingId"`
	UserID    string            `bson:"user_id" json:"userId"`
	EventType PresenceEventType `bson:"event_type" json:"eventType"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any    `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type PresenceAuditRepository interface {
	Log(ctx context.Context, log *PresenceAuditLog) error
	GetByMeetingID(ctx context.Context, meetingID string, limit int) ([]PresenceAuditLog, error)
	GetByEventType(ctx context.Context, eventType PresenceEventType, from, to time.Time) ([]PresenceAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewParticipantJoinedLog(event PresenceEvent) *PresenceAuditLog {
	return &PresenceAuditLog{
		ID:        uuid.NewString(),
		MeetingID: event.MeetingID,
		UserID:    event.UserID,
		EventType: EventParticipantJoined,
		Timestamp: event.Occurred,
		Metadata: map[string]any{
			"name": event.Name,
		},
	}
}

func NewParticipantLeftLog(event PresenceEvent) *PresenceAuditLog {
	return &PresenceAuditLog{
		ID:        uuid.NewString(),
		MeetingID: event.MeetingID,
		UserID:    event.UserID,
		EventType: EventParticipantLeft,
		Timestamp: event.Occurred,
		Metadata: map[string]any{
			"name": event.Name,
		},
	}
}
