package presence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_UpsertAtConnection_Appends_In_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When three users join the same room
	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice", "")
	registry.UpsertAtConnection("room-1", "conn-b", "user-b", "Bob", "")
	registry.UpsertAtConnection("room-1", "conn-c", "user-c", "Cara", "")

	// Then the member list preserves insertion order
	members := registry.Members("room-1")
	req.Len(members, 3)
	req.Equal("user-a", members[0].UserID)
	req.Equal("user-b", members[1].UserID)
	req.Equal("user-c", members[2].UserID)
}

func TestRegistry_UpsertAtConnection_Overwrites_Same_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given a member on a connection
	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice", "")

	// When the same connection re-announces with fresh attributes
	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice B.", "photo.png")

	// Then the entry is overwritten, not duplicated
	members := registry.Members("room-1")
	req.Len(members, 1)
	req.Equal("Alice B.", members[0].Name)
	req.Equal("photo.png", members[0].Photo)
}

func TestRegistry_ReplaceConnectionForUser_Preserves_Position(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice", "")
	registry.UpsertAtConnection("room-1", "conn-b", "user-b", "Bob", "")
	registry.UpsertAtConnection("room-1", "conn-c", "user-c", "Cara", "")

	// When the middle user reconnects on a new connection
	replaced := registry.ReplaceConnectionForUser("room-1", "user-b", "conn-b2", "Bob", "")

	// Then the member keeps its slot with the new connection id
	req.True(replaced)
	members := registry.Members("room-1")
	req.Len(members, 3)
	req.Equal("user-b", members[1].UserID)
	req.Equal("conn-b2", members[1].ConnectionID)
}

func TestRegistry_ReplaceConnectionForUser_Unknown_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.EnsureRoom("room-1")

	req.False(registry.ReplaceConnectionForUser("room-1", "ghost", "conn-x", "Ghost", ""))
}

func TestRegistry_RemoveByConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice", "")
	registry.UpsertAtConnection("room-1", "conn-b", "user-b", "Bob", "")

	// When one connection is removed
	removed, ok := registry.RemoveByConnection("room-1", "conn-a")

	// Then only that member is gone
	req.True(ok)
	req.Equal("user-a", removed.UserID)
	members := registry.Members("room-1")
	req.Len(members, 1)
	req.Equal("user-b", members[0].UserID)

	// And removing again is a no-op
	_, ok = registry.RemoveByConnection("room-1", "conn-a")
	req.False(ok)
}

func TestRegistry_Empty_Room_Stays_Tracked(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice", "")
	_, ok := registry.RemoveByConnection("room-1", "conn-a")
	req.True(ok)

	// The emptied room still exists and yields an empty list
	req.Contains(registry.RoomIDs(), "room-1")
	req.Empty(registry.Members("room-1"))
}

func TestRegistry_ResolveConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice", "")
	registry.UpsertAtConnection("room-2", "conn-b", "user-b", "Bob", "")

	roomID, member, ok := registry.ResolveConnection("conn-b")
	req.True(ok)
	req.Equal("room-2", roomID)
	req.Equal("user-b", member.UserID)

	_, _, ok = registry.ResolveConnection("conn-unknown")
	req.False(ok)
}

func TestRegistry_Members_Returns_Copy(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice", "")

	members := registry.Members("room-1")
	members[0].Name = "Mallory"

	req.Equal("Alice", registry.Members("room-1")[0].Name)
}

func TestRegistry_MemberCount_Across_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.UpsertAtConnection("room-1", "conn-a", "user-a", "Alice", "")
	registry.UpsertAtConnection("room-1", "conn-b", "user-b", "Bob", "")
	registry.UpsertAtConnection("room-2", "conn-c", "user-c", "Cara", "")

	req.Equal(3, registry.MemberCount())
}
