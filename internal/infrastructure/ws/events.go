package ws

const (
	// Inbound
	MeetingJoin  = "meeting.join"
	MeetingLeave = "meeting.leave"
	ChatMessage  = "chat.message"

	// Outbound
	MeetingMembers = "meeting.members"
)
