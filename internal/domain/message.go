package domain

// ChatMessage is what a connection sends when it wants a message relayed to
// its room. Timestamp is optional; the server assigns one when absent.
type ChatMessage struct {
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// RoomChatMessage is the relayed form: the inbound message enriched with the
// sender's display attributes as known to the presence registry.
type RoomChatMessage struct {
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Name      string `json:"name,omitempty"`
	Photo     string `json:"photo,omitempty"`
}
