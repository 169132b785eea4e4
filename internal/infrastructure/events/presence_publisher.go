package events

import (
	"context"
	"encoding/json"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/contracts"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/messaging"
)

type PresencePublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewPresencePublisher(rabbitmq *messaging.RabbitMQ) *PresencePublisher {
	return &PresencePublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *PresencePublisher) PublishParticipantJoined(ctx context.Context, event domain.PresenceEvent) error {
	return p.publish(ctx, contracts.EventParticipantJoined, event)
}

func (p *PresencePublisher) PublishParticipantLeft(ctx context.Context, event domain.PresenceEvent) error {
	return p.publish(ctx, contracts.EventParticipantLeft, event)
}

func (p *PresencePublisher) publish(ctx context.Context, routingKey string, event domain.PresenceEvent) error {
	payload := messaging.ParticipantEventData{
		Event: event,
	}

	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		MeetingID: event.MeetingID,
		Data:      eventJSON,
	})
}
