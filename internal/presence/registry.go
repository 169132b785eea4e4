package presence

import (
	"sync"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
)

type room struct {
	id      string
	members []domain.Member
}

// Registry is the process-wide roomID -> members mapping, the single source
// of truth for who is online where. Order of members is insertion order so
// broadcast payloads are deterministic. Rooms are created on first join and
// never compacted; an empty room is legal.
//
// Event handlers run one at a time on the ws dispatcher goroutine; the
// mutex keeps the at-most-one-writer-per-room guarantee even if handlers
// are ever moved onto parallel goroutines.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*room),
	}
}

// EnsureRoom creates an empty room if absent. Idempotent.
func (r *Registry) EnsureRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = &room{id: roomID}
	}
}

func (r *Registry) FindByConnection(roomID, connID string) (domain.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.Member{}, false
	}
	for _, m := range rm.members {
		if m.ConnectionID == connID {
			return m, true
		}
	}
	return domain.Member{}, false
}

func (r *Registry) FindByUser(roomID, userID string) (domain.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.Member{}, false
	}
	for _, m := range rm.members {
		if m.UserID == userID {
			return m, true
		}
	}
	return domain.Member{}, false
}

// UpsertAtConnection inserts or overwrites the member keyed by connection
// id. A new member is appended, preserving insertion order.
func (r *Registry) UpsertAtConnection(roomID, connID, userID, name, photo string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{id: roomID}
		r.rooms[roomID] = rm
	}

	member := domain.Member{
		ConnectionID: connID,
		UserID:       userID,
		Name:         name,
		Photo:        photo,
	}

	for i, m := range rm.members {
		if m.ConnectionID == connID {
			rm.members[i] = member
			return
		}
	}
	rm.members = append(rm.members, member)
}

// ReplaceConnectionForUser rewrites the member matching userID to use the
// new connection id and refreshed display attributes, keeping its position.
// Reports whether a member was rewritten.
func (r *Registry) ReplaceConnectionForUser(roomID, userID, newConnID, name, photo string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	for i, m := range rm.members {
		if m.UserID == userID {
			rm.members[i] = domain.Member{
				ConnectionID: newConnID,
				UserID:       userID,
				Name:         name,
				Photo:        photo,
			}
			return true
		}
	}
	return false
}

// RemoveByConnection removes the member with that connection id from the
// given room, returning the removed member so callers can react only when
// something was actually removed.
func (r *Registry) RemoveByConnection(roomID, connID string) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.Member{}, false
	}
	for i, m := range rm.members {
		if m.ConnectionID == connID {
			rm.members = append(rm.members[:i], rm.members[i+1:]...)
			return m, true
		}
	}
	return domain.Member{}, false
}

// Members returns a copy of the room's member list in insertion order. An
// unknown room yields an empty list.
func (r *Registry) Members(roomID string) []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return []domain.Member{}
	}
	out := make([]domain.Member, len(rm.members))
	copy(out, rm.members)
	return out
}

// RoomIDs returns the ids of every tracked room, including empty ones.
func (r *Registry) RoomIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}

// ResolveConnection scans rooms for a member with the given connection id
// and returns the first room containing one. Linear in the number of
// members; small and medium deployments never notice, and a connection is a
// member of at most one room anyway.
func (r *Registry) ResolveConnection(connID string) (string, domain.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, rm := range r.rooms {
		for _, m := range rm.members {
			if m.ConnectionID == connID {
				return id, m, true
			}
		}
	}
	return "", domain.Member{}, false
}

// MemberCount reports the total number of members across all rooms.
func (r *Registry) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, rm := range r.rooms {
		n += len(rm.members)
	}
	return n
}
