package events

import (
	"context"
	"encoding/json"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/domain"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/contracts"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/logging"
	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

// auditConsumer materialises presence events from the bus into the audit
// log store.
type auditConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.PresenceAuditRepository
	logger   logging.Logger
}

func NewAuditConsumer(rabbitmq *messaging.RabbitMQ, audit domain.PresenceAuditRepository, logger logging.Logger) *auditConsumer {
	return &auditConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
		logger:   logger,
	}
}

func (c *auditConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.PresenceQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			return err
		}

		var payload messaging.ParticipantEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}

		var entry *domain.PresenceAuditLog
		switch msg.RoutingKey {
		case contracts.EventParticipantJoined:
			entry = domain.NewParticipantJoinedLog(payload.Event)
		case contracts.EventParticipantLeft:
			entry = domain.NewParticipantLeftLog(payload.Event)
		default:
			// Unknown routing key; ack and move on.
			return nil
		}

		if err := c.audit.Log(ctx, entry); err != nil {
			c.logger.Error(logging.Mongo, logging.Audit, "failed to persist audit log", map[logging.ExtraKey]any{
				logging.MeetingID:    entry.MeetingID,
				logging.ErrorMessage: err.Error(),
			})
			return err
		}

		return nil
	})
}
