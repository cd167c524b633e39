package service

import (
	"context"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventForwarder ships events off-process; satisfied by *nats.Publisher
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	forwarder EventForwarder
	logger    logger.ILogger
}

// NewConsumerService drains the in-process topic; forwarder may be nil when NATS is not configured
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	forwarder EventForwarder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		forwarder: forwarder,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("ConsumerService", "Event received", map[string]interface{}{
		"type": event.EventType(),
	})

	if cs.forwarder == nil {
		msg.Ack()
		return
	}

	if err := cs.forwarder.Publish(ctx, event); err != nil {
		// Audit events are best-effort; a Nack would spin while NATS is down
		cs.logger.Warn("ConsumerService", "Failed to forward event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
	msg.Ack()
}
