package ws

import (
	"context"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/metrics"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/presence"
)

type joinRequest struct {
	client  *Client
	payload JoinPayload
}

type leaveRequest struct {
	client *Client
	roomID string
}

type chatRequest struct {
	client  *Client
	message domain.ChatMessage
}

// ChatLimiter throttles inbound chat per connection. Over-limit messages
// are dropped silently, consistent with the no-acknowledgment contract.
type ChatLimiter interface {
	Allow(sourceKey string) bool
}

// Core is the event dispatcher: a single goroutine drains all inbound
// channels, so exactly one presence handler body runs at a time and the
// registry never sees interleaved mutations mid-handler.
type Core struct {
	manager *RoomManager
	service *presence.Service
	limiter ChatLimiter

	join       chan joinRequest
	leave      chan leaveRequest
	chat       chan chatRequest
	disconnect chan *Client
}

func NewCore(manager *RoomManager, service *presence.Service, limiter ChatLimiter) *Core {
	return &Core{
		manager:    manager,
		service:    service,
		limiter:    limiter,
		join:       make(chan joinRequest),
		leave:      make(chan leaveRequest),
		chat:       make(chan chatRequest, 256),
		disconnect: make(chan *Client),
	}
}

func (c *Core) Run(ctx context.Context) {
	for {
		select {
		case r := <-c.join:
			c.service.Join(ctx, r.client.ID(), r.payload.UserID, r.payload.RoomID, r.payload.Name, r.payload.Photo)

		case r := <-c.leave:
			c.service.Leave(ctx, r.client.ID(), r.roomID)

		case r := <-c.chat:
			if c.limiter != nil && !c.limiter.Allow(r.client.ID()) {
				metrics.ChatDroppedTotal.WithLabelValues("throttled").Inc()
				metrics.RateLimitHits.WithLabelValues("chat").Inc()
				continue
			}
			c.service.Relay(ctx, r.client.ID(), r.message)

		case cl := <-c.disconnect:
			c.service.Disconnect(ctx, cl.ID())
			c.manager.RemoveClient(cl)

		case <-ctx.Done():
			return
		}
	}
}

func (c *Core) Join() chan<- joinRequest {
	return c.join
}

func (c *Core) Leave() chan<- leaveRequest {
	return c.leave
}

func (c *Core) Chat() chan<- chatRequest {
	return c.chat
}

func (c *Core) Disconnect() chan<- *Client {
	return c.disconnect
}
