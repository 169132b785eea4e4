package domain

// Member is one user's presence inside one room. UserID is unique within a
// room; ConnectionID is unique across the whole registry because a
// connection may be joined to at most one room at a time.
type Member struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	Name         string `json:"name,omitempty"`
	Photo        string `json:"photo,omitempty"`
}
