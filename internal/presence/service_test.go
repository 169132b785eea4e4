package presence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/logging"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Init()                                                             {}
func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                             {}
func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Infof(string, ...any)                                              {}
func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Warnf(string, ...any)                                              {}
func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                             {}
func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                             {}

type memberBroadcast struct {
	roomID  string
	members []domain.Member
}

type fakeBroadcaster struct {
	mu           sync.Mutex
	attached     []string
	detached     []string
	memberSends  []memberBroadcast
	chatSends    []domain.RoomChatMessage
	chatRoomIDs  []string
}

func (b *fakeBroadcaster) Attach(roomID, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached = append(b.attached, roomID+"/"+connID)
}

func (b *fakeBroadcaster) Detach(roomID, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detached = append(b.detached, roomID+"/"+connID)
}

func (b *fakeBroadcaster) BroadcastMembers(roomID string, members []domain.Member) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.memberSends = append(b.memberSends, memberBroadcast{roomID: roomID, members: members})
}

func (b *fakeBroadcaster) BroadcastChat(roomID string, msg domain.RoomChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatRoomIDs = append(b.chatRoomIDs, roomID)
	b.chatSends = append(b.chatSends, msg)
}

func (b *fakeBroadcaster) lastMemberSend() memberBroadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.memberSends[len(b.memberSends)-1]
}

type fakeNotifier struct {
	mu      sync.Mutex
	added   []string
	removed []string
	err     error
}

func (n *fakeNotifier) AddParticipant(ctx context.Context, meetingID, userID, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.added = append(n.added, meetingID+"/"+userID)
	return n.err
}

func (n *fakeNotifier) RemoveParticipant(ctx context.Context, meetingID, userID, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = append(n.removed, meetingID+"/"+userID)
	return n.err
}

func (n *fakeNotifier) addedCalls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.added...)
}

func (n *fakeNotifier) removedCalls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.removed...)
}

type fakePublisher struct {
	mu     sync.Mutex
	joined []domain.PresenceEvent
	left   []domain.PresenceEvent
}

func (p *fakePublisher) PublishParticipantJoined(ctx context.Context, event domain.PresenceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joined = append(p.joined, event)
	return nil
}

func (p *fakePublisher) PublishParticipantLeft(ctx context.Context, event domain.PresenceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.left = append(p.left, event)
	return nil
}

type upperFilter struct{}

func (upperFilter) Mask(text string) string { return strings.ToUpper(text) }

func newTestService(opts ...Option) (*Service, *Registry, *fakeBroadcaster, *fakeNotifier) {
	registry := NewRegistry()
	broadcaster := &fakeBroadcaster{}
	notifier := &fakeNotifier{}
	svc := NewService(registry, broadcaster, notifier, nopLogger{}, opts...)
	return svc, registry, broadcaster, notifier
}

func TestService_Join_New_User(t *testing.T) {
	req := require.New(t)
	svc, registry, broadcaster, notifier := newTestService()

	// When a new user joins a room
	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "alice.png")
	svc.Wait()

	// Then the member is registered and the room is notified
	members := registry.Members("room-1")
	req.Len(members, 1)
	req.Equal("user-a", members[0].UserID)

	req.Equal([]string{"room-1/conn-a"}, broadcaster.attached)
	req.Len(broadcaster.memberSends, 1)
	req.Equal(members, broadcaster.lastMemberSend().members)

	// And the meeting service learns about the participant exactly once
	req.Equal([]string{"room-1/user-a"}, notifier.addedCalls())
}

func TestService_Join_Same_Connection_Reannounce(t *testing.T) {
	req := require.New(t)
	svc, registry, broadcaster, notifier := newTestService()

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")

	// When the same connection announces the same join again
	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "new.png")
	svc.Wait()

	// Then no duplicate member and no second notification
	req.Len(registry.Members("room-1"), 1)
	req.Equal("new.png", registry.Members("room-1")[0].Photo)
	req.Len(notifier.addedCalls(), 1)

	// But the member list is still rebroadcast
	req.Len(broadcaster.memberSends, 2)
}

func TestService_Join_Known_User_New_Connection(t *testing.T) {
	req := require.New(t)
	svc, registry, broadcaster, notifier := newTestService()

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")
	svc.Join(context.Background(), "conn-b", "user-b", "room-1", "Bob", "")

	// When the first user reconnects on a fresh connection
	svc.Join(context.Background(), "conn-a2", "user-a", "room-1", "Alice", "")
	svc.Wait()

	// Then the member keeps its position with the new connection id
	members := registry.Members("room-1")
	req.Len(members, 2)
	req.Equal("user-a", members[0].UserID)
	req.Equal("conn-a2", members[0].ConnectionID)

	// And no extra add-participant call goes out
	req.Len(notifier.addedCalls(), 2)

	// And the stale connection closing later removes nothing
	svc.Disconnect(context.Background(), "conn-a")
	svc.Wait()
	req.Len(registry.Members("room-1"), 2)
	req.Empty(notifier.removedCalls())
	req.Empty(broadcaster.detached)
}

func TestService_Join_Missing_Identifiers(t *testing.T) {
	req := require.New(t)
	svc, registry, broadcaster, notifier := newTestService()

	svc.Join(context.Background(), "conn-a", "  ", "room-1", "Alice", "")
	svc.Join(context.Background(), "conn-a", "user-a", "", "Alice", "")
	svc.Wait()

	req.Zero(registry.MemberCount())
	req.Empty(broadcaster.memberSends)
	req.Empty(notifier.addedCalls())
}

func TestService_Join_Switching_Rooms_Leaves_Previous(t *testing.T) {
	req := require.New(t)
	svc, registry, broadcaster, notifier := newTestService()

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")

	// When the same connection joins a different room
	svc.Join(context.Background(), "conn-a", "user-a", "room-2", "Alice", "")
	svc.Wait()

	// Then it left the first room and is present only in the second
	req.Empty(registry.Members("room-1"))
	req.Len(registry.Members("room-2"), 1)
	req.Contains(broadcaster.detached, "room-1/conn-a")
	req.Equal([]string{"room-1/user-a"}, notifier.removedCalls())
}

func TestService_Disconnect_Removes_From_Owning_Room(t *testing.T) {
	req := require.New(t)
	svc, registry, broadcaster, notifier := newTestService()

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")
	svc.Join(context.Background(), "conn-b", "user-b", "room-2", "Bob", "")

	// When one connection drops
	svc.Disconnect(context.Background(), "conn-a")
	svc.Wait()

	// Then only its room loses a member
	req.Empty(registry.Members("room-1"))
	req.Len(registry.Members("room-2"), 1)

	req.Equal([]string{"room-1/conn-a"}, broadcaster.detached)
	req.Equal([]string{"room-1/user-a"}, notifier.removedCalls())
}

func TestService_Disconnect_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	svc, _, broadcaster, notifier := newTestService()

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")
	sends := len(broadcaster.memberSends)

	// A connection that never joined matches nothing
	svc.Disconnect(context.Background(), "conn-ghost")
	svc.Wait()

	req.Len(broadcaster.memberSends, sends)
	req.Empty(notifier.removedCalls())
}

func TestService_Leave_Targets_One_Room(t *testing.T) {
	req := require.New(t)
	svc, registry, broadcaster, notifier := newTestService()

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")

	// When the user leaves explicitly
	svc.Leave(context.Background(), "conn-a", "room-1")
	svc.Wait()

	req.Empty(registry.Members("room-1"))
	req.Equal([]string{"room-1/conn-a"}, broadcaster.detached)
	req.Equal([]string{"room-1/user-a"}, notifier.removedCalls())

	// Leaving a room the connection is not in is a no-op
	svc.Leave(context.Background(), "conn-a", "room-2")
	svc.Wait()
	req.Len(notifier.removedCalls(), 1)
}

func TestService_Notify_Failure_Does_Not_Undo_Join(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := &fakeBroadcaster{}
	notifier := &fakeNotifier{err: errors.New("backend down")}
	svc := NewService(registry, broadcaster, notifier, nopLogger{})

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")
	svc.Wait()

	// The member stays registered and the broadcast went out regardless
	req.Len(registry.Members("room-1"), 1)
	req.Len(broadcaster.memberSends, 1)
}

func TestService_Relay_Trims_And_Enriches(t *testing.T) {
	req := require.New(t)
	svc, _, broadcaster, _ := newTestService()
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Bea", "bea.png")

	// When a padded message with no timestamp arrives
	svc.Relay(context.Background(), "conn-a", domain.ChatMessage{UserID: "user-a", Message: "  hi  "})
	svc.Wait()

	req.Len(broadcaster.chatSends, 1)
	sent := broadcaster.chatSends[0]
	req.Equal("hi", sent.Message)
	req.Equal("Bea", sent.Name)
	req.Equal("bea.png", sent.Photo)
	req.Equal(fixed.Format(time.RFC3339), sent.Timestamp)
	req.Equal([]string{"room-1"}, broadcaster.chatRoomIDs)
}

func TestService_Relay_Keeps_Client_Timestamp(t *testing.T) {
	req := require.New(t)
	svc, _, broadcaster, _ := newTestService()

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")
	svc.Relay(context.Background(), "conn-a", domain.ChatMessage{
		UserID:    "user-a",
		Message:   "hello",
		Timestamp: "2026-01-02T15:04:05Z",
	})

	req.Equal("2026-01-02T15:04:05Z", broadcaster.chatSends[0].Timestamp)
}

func TestService_Relay_Drops_Blank_Message(t *testing.T) {
	req := require.New(t)
	svc, _, broadcaster, _ := newTestService()

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")
	svc.Relay(context.Background(), "conn-a", domain.ChatMessage{UserID: "user-a", Message: "   \t  "})

	req.Empty(broadcaster.chatSends)
}

func TestService_Relay_Drops_Unknown_Sender(t *testing.T) {
	req := require.New(t)
	svc, _, broadcaster, _ := newTestService()

	svc.Relay(context.Background(), "conn-ghost", domain.ChatMessage{UserID: "user-x", Message: "hello"})

	req.Empty(broadcaster.chatSends)
}

func TestService_Relay_Applies_Filter(t *testing.T) {
	req := require.New(t)
	svc, _, broadcaster, _ := newTestService(WithMessageFilter(upperFilter{}))

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")
	svc.Relay(context.Background(), "conn-a", domain.ChatMessage{UserID: "user-a", Message: "hello"})

	req.Equal("HELLO", broadcaster.chatSends[0].Message)
}

func TestService_Publisher_Receives_Events(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := &fakeBroadcaster{}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := NewService(registry, broadcaster, notifier, nopLogger{}, WithEventPublisher(publisher))

	svc.Join(context.Background(), "conn-a", "user-a", "room-1", "Alice", "")
	svc.Disconnect(context.Background(), "conn-a")
	svc.Wait()

	req.Len(publisher.joined, 1)
	req.Equal("room-1", publisher.joined[0].MeetingID)
	req.Len(publisher.left, 1)
	req.Equal("user-a", publisher.left[0].UserID)
}
