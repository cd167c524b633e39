package service

import (
	"context"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/events"
	pktNats "legal-assistant-be/pkg/nats" // Renamed to avoid collision
)

// HistoryForgetter drops model-side context of a conversation; satisfied by *aichat.LLMClient
type HistoryForgetter interface {
	Forget(conversationID string)
}

// AuditService writes every conversation event to the audit log and makes
// purges reach the model-side history on every instance
type AuditService struct {
	subscriber *pktNats.Subscriber
	forgetter  HistoryForgetter
	logger     logger.ILogger
}

func NewAuditService(sub *pktNats.Subscriber, forgetter HistoryForgetter, log logger.ILogger) *AuditService {
	return &AuditService{
		subscriber: sub,
		forgetter:  forgetter,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *AuditService) Start(ctx context.Context) {
	if err := s.subscriber.Subscribe(ctx, "*", "legalchat-audit-worker", s.HandleEvent); err != nil {
		s.logger.Error("AuditService", "Failed to start audit subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("AuditService", "Audit service started", nil)
}

func (s *AuditService) HandleEvent(_ context.Context, event events.Event) error {
	payload := event.Payload()
	details := map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
	}
	// Emails stay out of the audit file
	for _, key := range []string{"conversation_id", "user_id", "deleted", "mode"} {
		if v, ok := payload[key]; ok {
			details[key] = v
		}
	}
	s.logger.Info("AuditService", "Conversation event", details)

	if event.EventType() == events.ConversationsPurged && s.forgetter != nil {
		for _, id := range conversationIDs(payload["conversation_ids"]) {
			s.forgetter.Forget(id)
		}
	}
	return nil
}

// conversationIDs accepts both the in-process []string and the decoded []interface{}
func conversationIDs(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if id, ok := item.(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
		return ids
	default:
		return nil
	}
}
