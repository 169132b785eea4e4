package domain

import "time"

// PresenceEvent describes one effective membership change, as reported to
// downstream consumers (meeting service, event bus, audit log).
type PresenceEvent struct {
	MeetingID string    `json:"meetingId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name,omitempty"`
	Occurred  time.Time `json:"occurred"`
}
