package presence

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/logging"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/metrics"
)

// Broadcaster is the narrow slice of the transport layer the presence
// handlers need: room membership of connections and room-wide sends.
type Broadcaster interface {
	Attach(roomID, connID string)
	Detach(roomID, connID string)
	BroadcastMembers(roomID string, members []domain.Member)
	BroadcastChat(roomID string, msg domain.RoomChatMessage)
}

// Notifier reports participant changes to the external meeting service.
// Calls are issued fire-and-forget; failures are logged and never undo a
// registry mutation or cancel a broadcast.
type Notifier interface {
	AddParticipant(ctx context.Context, meetingID, userID, name string) error
	RemoveParticipant(ctx context.Context, meetingID, userID, name string) error
}

// EventPublisher pushes presence events onto the event bus for downstream
// consumers (audit log). Optional.
type EventPublisher interface {
	PublishParticipantJoined(ctx context.Context, event domain.PresenceEvent) error
	PublishParticipantLeft(ctx context.Context, event domain.PresenceEvent) error
}

// MessageFilter rewrites relayed chat text (profanity masking). Optional.
type MessageFilter interface {
	Mask(text string) string
}

// Service reconciles connection events against the registry. Handlers are
// invoked one at a time from the ws dispatcher goroutine, so a handler body
// always sees and leaves a consistent registry; only the notifier and
// publisher calls leave the handler's synchronous path.
type Service struct {
	registry    *Registry
	broadcaster Broadcaster
	notifier    Notifier
	publisher   EventPublisher
	filter      MessageFilter
	logger      logging.Logger

	now func() time.Time
	wg  sync.WaitGroup
}

type Option func(*Service)

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMessageFilter(f MessageFilter) Option {
	return func(s *Service) { s.filter = f }
}

func NewService(registry *Registry, broadcaster Broadcaster, notifier Notifier, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		registry:    registry,
		broadcaster: broadcaster,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join reconciles a join event. Three mutually exclusive cases, in priority
// order: the same connection re-announcing itself (idempotent overwrite, no
// notification), a user new to the room (append + add-participant
// notification), or a known user arriving on a fresh connection after a
// reload, new tab or reconnect (position-preserving rewrite, no
// notification: the meeting service already considers the user present).
func (s *Service) Join(ctx context.Context, connID, userID, roomID, name, photo string) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(roomID) == "" {
		metrics.JoinsTotal.WithLabelValues("rejected").Inc()
		s.logger.Debug(logging.Presence, logging.Join, "join dropped: missing userId or roomId", map[logging.ExtraKey]any{
			logging.ConnectionID: connID,
		})
		return
	}

	// A connection belongs to at most one room; switching rooms implies
	// leaving the previous one.
	if prevRoom, _, ok := s.registry.ResolveConnection(connID); ok && prevRoom != roomID {
		s.Leave(ctx, connID, prevRoom)
	}

	s.registry.EnsureRoom(roomID)

	switch {
	case s.hasConnection(roomID, connID):
		s.registry.UpsertAtConnection(roomID, connID, userID, name, photo)
		metrics.JoinsTotal.WithLabelValues("reannounce").Inc()

	case !s.hasUser(roomID, userID):
		s.registry.UpsertAtConnection(roomID, connID, userID, name, photo)
		metrics.JoinsTotal.WithLabelValues("new").Inc()
		s.notifyJoined(roomID, userID, name)

	default:
		s.registry.ReplaceConnectionForUser(roomID, userID, connID, name, photo)
		metrics.JoinsTotal.WithLabelValues("reconnect").Inc()
	}

	metrics.MembersActive.Set(float64(s.registry.MemberCount()))
	metrics.RoomsTracked.Set(float64(len(s.registry.RoomIDs())))

	s.broadcaster.Attach(roomID, connID)
	s.broadcaster.BroadcastMembers(roomID, s.registry.Members(roomID))

	s.logger.Info(logging.Presence, logging.Join, "member joined room", map[logging.ExtraKey]any{
		logging.MeetingID:    roomID,
		logging.UserID:       userID,
		logging.ConnectionID: connID,
	})
}

// Disconnect handles a closing connection. The transport does not say which
// room (if any) owned the connection, so every room is tried; the registry
// invariant guarantees at most one removal.
func (s *Service) Disconnect(ctx context.Context, connID string) {
	for _, roomID := range s.registry.RoomIDs() {
		member, ok := s.registry.RemoveByConnection(roomID, connID)
		if !ok {
			continue
		}

		metrics.DisconnectsTotal.Inc()
		metrics.MembersActive.Set(float64(s.registry.MemberCount()))

		s.notifyLeft(roomID, member.UserID, member.Name)
		s.broadcaster.Detach(roomID, connID)
		s.broadcaster.BroadcastMembers(roomID, s.registry.Members(roomID))

		s.logger.Info(logging.Presence, logging.Disconnect, "member disconnected", map[logging.ExtraKey]any{
			logging.MeetingID:    roomID,
			logging.UserID:       member.UserID,
			logging.ConnectionID: connID,
		})
	}
	// A connection that never completed a join matches no room; that is
	// not an error.
}

// Leave removes the connection's member from one room only. The connection
// stays alive.
func (s *Service) Leave(ctx context.Context, connID, roomID string) {
	if strings.TrimSpace(roomID) == "" {
		return
	}

	member, ok := s.registry.RemoveByConnection(roomID, connID)
	if !ok {
		return
	}

	metrics.LeavesTotal.Inc()
	metrics.MembersActive.Set(float64(s.registry.MemberCount()))

	s.notifyLeft(roomID, member.UserID, member.Name)
	s.broadcaster.Detach(roomID, connID)
	s.broadcaster.BroadcastMembers(roomID, s.registry.Members(roomID))

	s.logger.Info(logging.Presence, logging.Leave, "member left room", map[logging.ExtraKey]any{
		logging.MeetingID:    roomID,
		logging.UserID:       member.UserID,
		logging.ConnectionID: connID,
	})
}

// Relay rebroadcasts a chat message to the sender's room. Empty messages
// and messages from connections with no room membership are dropped
// silently; there is no acknowledgment path back to the sender.
func (s *Service) Relay(ctx context.Context, connID string, msg domain.ChatMessage) {
	text := strings.TrimSpace(msg.Message)
	if text == "" {
		metrics.ChatDroppedTotal.WithLabelValues("empty").Inc()
		return
	}

	roomID, sender, ok := s.registry.ResolveConnection(connID)
	if !ok {
		metrics.ChatDroppedTotal.WithLabelValues("no_room").Inc()
		s.logger.Debug(logging.Chat, logging.Relay, "chat dropped: sender has no room", map[logging.ExtraKey]any{
			logging.ConnectionID: connID,
		})
		return
	}

	if s.filter != nil {
		text = s.filter.Mask(text)
	}

	timestamp := msg.Timestamp
	if timestamp == "" {
		timestamp = s.now().UTC().Format(time.RFC3339)
	}

	s.broadcaster.BroadcastChat(roomID, domain.RoomChatMessage{
		UserID:    msg.UserID,
		Message:   text,
		Timestamp: timestamp,
		Name:      sender.Name,
		Photo:     sender.Photo,
	})
	metrics.ChatRelayedTotal.Inc()
}

// Wait blocks until all in-flight notifier and publisher calls finish.
// Used on shutdown and in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) hasConnection(roomID, connID string) bool {
	_, ok := s.registry.FindByConnection(roomID, connID)
	return ok
}

func (s *Service) hasUser(roomID, userID string) bool {
	_, ok := s.registry.FindByUser(roomID, userID)
	return ok
}

func (s *Service) notifyJoined(meetingID, userID, name string) {
	event := domain.PresenceEvent{
		MeetingID: meetingID,
		UserID:    userID,
		Name:      name,
		Occurred:  s.now().UTC(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.notifier.AddParticipant(context.Background(), meetingID, userID, name); err != nil {
			metrics.NotifyFailuresTotal.WithLabelValues("add").Inc()
			s.logger.Error(logging.Meetings, logging.ExternalService, "add participant notification failed", map[logging.ExtraKey]any{
				logging.MeetingID:    meetingID,
				logging.UserID:       userID,
				logging.ErrorMessage: err.Error(),
			})
		}

		if s.publisher != nil {
			if err := s.publisher.PublishParticipantJoined(context.Background(), event); err != nil {
				s.logger.Error(logging.RabbitMQ, logging.Audit, "publishing participant joined failed", map[logging.ExtraKey]any{
					logging.MeetingID:    meetingID,
					logging.ErrorMessage: err.Error(),
				})
			}
		}
	}()
}

func (s *Service) notifyLeft(meetingID, userID, name string) {
	event := domain.PresenceEvent{
		MeetingID: meetingID,
		UserID:    userID,
		Name:      name,
		Occurred:  s.now().UTC(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.notifier.RemoveParticipant(context.Background(), meetingID, userID, name); err != nil {
			metrics.NotifyFailuresTotal.WithLabelValues("remove").Inc()
			s.logger.Error(logging.Meetings, logging.ExternalService, "remove participant notification failed", map[logging.ExtraKey]any{
				logging.MeetingID:    meetingID,
				logging.UserID:       userID,
				logging.ErrorMessage: err.Error(),
			})
		}

		if s.publisher != nil {
			if err := s.publisher.PublishParticipantLeft(context.Background(), event); err != nil {
				s.logger.Error(logging.RabbitMQ, logging.Audit, "publishing participant left failed", map[logging.ExtraKey]any{
					logging.MeetingID:    meetingID,
					logging.ErrorMessage: err.Error(),
				})
			}
		}
	}()
}
