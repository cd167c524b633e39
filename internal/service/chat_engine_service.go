package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/aichat"
	"legal-assistant-be/pkg/classifier"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/events"
	"legal-assistant-be/pkg/report"
	"legal-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

const (
	engineModule = "ChatEngineService"

	SnapshotMessageType = "snapshot"
)

// ErrReportNotFound is returned when the index does not point at a report message
var ErrReportNotFound = errors.New("report not found")

// SnapshotSink pushes live snapshots to the browser; satisfied by *websocket.Hub
type SnapshotSink interface {
	SendToClient(clientID, messageType string, payload interface{})
}

type IChatEngineService interface {
	Session(ctx context.Context, clientID string, user conversation.User) conversation.Snapshot
	SelectMode(ctx context.Context, clientID string, user conversation.User, mode string) (conversation.Snapshot, error)
	Submit(ctx context.Context, clientID string, user conversation.User, message string) (conversation.Snapshot, error)
	StartNew(ctx context.Context, clientID string, user conversation.User) conversation.Snapshot
	Report(ctx context.Context, clientID string, user conversation.User, index int) (*dto.ReportResponse, error)
	ListConversations(ctx context.Context, user conversation.User) ([]dto.ConversationSummary, error)
}

type ChatEngineConfig struct {
	AI            aichat.Client
	Conversations IConversationService // nil when no database is configured
	KV            store.KeyValueStore
	KeyPrefix     string
	IdleTTL       time.Duration
	Sink          SnapshotSink
	Publisher     IPublisherService
	Logger        logger.ILogger
}

type chatEngineService struct {
	cfg        ChatEngineConfig
	classifier *classifier.Classifier

	// clientID -> *conversation.Controller; evicted controllers are rebuilt from the store
	controllers *cache.Cache
	mu          sync.Mutex
}

func NewChatEngineService(cfg ChatEngineConfig) IChatEngineService {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	return &chatEngineService{
		cfg:         cfg,
		classifier:  classifier.NewDefault(),
		controllers: cache.New(cfg.IdleTTL, 10*time.Minute),
	}
}

func (s *chatEngineService) controller(ctx context.Context, clientID string, user conversation.User) *conversation.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if x, found := s.controllers.Get(clientID); found {
		c := x.(*conversation.Controller)
		// Touch to extend the idle window
		s.controllers.SetDefault(clientID, c)
		c.SetUser(user)
		return c
	}

	cfg := conversation.Config{
		AI:         s.cfg.AI,
		Store:      store.NewSessionStore(s.cfg.KV, s.cfg.KeyPrefix+":"+clientID, s.cfg.Logger),
		Classifier: s.classifier,
		Logger:     s.cfg.Logger,
	}
	if s.cfg.Conversations != nil {
		cfg.Conversations = s.cfg.Conversations
	}
	if s.cfg.Sink != nil {
		sink := s.cfg.Sink
		cfg.Listener = func(snap conversation.Snapshot) {
			sink.SendToClient(clientID, SnapshotMessageType, snap)
		}
	}

	c := conversation.NewController(cfg)
	c.SetUser(user)
	c.Restore(ctx)
	s.controllers.SetDefault(clientID, c)

	s.cfg.Logger.Debug(engineModule, "Controller created", map[string]interface{}{"client_id": clientID})
	return c
}

func (s *chatEngineService) Session(ctx context.Context, clientID string, user conversation.User) conversation.Snapshot {
	return s.controller(ctx, clientID, user).Snapshot()
}

func (s *chatEngineService) SelectMode(ctx context.Context, clientID string, user conversation.User, raw string) (conversation.Snapshot, error) {
	c := s.controller(ctx, clientID, user)

	mode, ok := store.ParseMode(raw)
	if !ok {
		return conversation.Snapshot{}, fmt.Errorf("select mode %q: %w", raw, conversation.ErrInvalidMode)
	}
	if err := c.SelectMode(ctx, mode); err != nil {
		return conversation.Snapshot{}, fmt.Errorf("select mode: %w", err)
	}

	s.publish(ctx, events.New(events.ModeSelected, map[string]interface{}{
		"mode":    mode.String(),
		"user_id": user.ID,
	}))
	return c.Snapshot(), nil
}

func (s *chatEngineService) Submit(ctx context.Context, clientID string, user conversation.User, message string) (conversation.Snapshot, error) {
	c := s.controller(ctx, clientID, user)
	if err := c.Submit(ctx, message); err != nil {
		return conversation.Snapshot{}, fmt.Errorf("submit: %w", err)
	}
	return c.Snapshot(), nil
}

func (s *chatEngineService) StartNew(ctx context.Context, clientID string, user conversation.User) conversation.Snapshot {
	c := s.controller(ctx, clientID, user)
	c.StartNewConversation(ctx)
	return c.Snapshot()
}

func (s *chatEngineService) Report(ctx context.Context, clientID string, user conversation.User, index int) (*dto.ReportResponse, error) {
	c := s.controller(ctx, clientID, user)

	sections, ok := c.ReportSections(index)
	if !ok {
		return nil, ErrReportNotFound
	}

	res := &dto.ReportResponse{Index: index, Sections: sections}
	if sections.ScoreLabel != "" {
		ld := report.ExtractLabelAndDescription(sections.ScoreLabel)
		res.Label = ld.Label
		res.Description = ld.Description
	}
	return res, nil
}

func (s *chatEngineService) ListConversations(ctx context.Context, user conversation.User) ([]dto.ConversationSummary, error) {
	if s.cfg.Conversations == nil || user.Email == "" {
		return []dto.ConversationSummary{}, nil
	}
	return s.cfg.Conversations.ListConversations(ctx, user.Email)
}

func (s *chatEngineService) publish(ctx context.Context, event events.Event) {
	if s.cfg.Publisher == nil {
		return
	}
	if err := s.cfg.Publisher.Publish(ctx, event); err != nil {
		s.cfg.Logger.Warn(engineModule, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
