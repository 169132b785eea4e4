package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	MeetingID string `json:"meetingId"`
	Data      []byte `json:"data"`
}

// Routing keys
const (
	EventParticipantJoined = "participant.joined"
	EventParticipantLeft   = "participant.left"
)
