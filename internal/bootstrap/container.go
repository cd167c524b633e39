package bootstrap

import (
	"context"

	"legal-assistant-be/internal/config"
	"legal-assistant-be/internal/controller"
	"legal-assistant-be/internal/handler"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/repository/kv"
	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/internal/service"
	"legal-assistant-be/internal/websocket"
	"legal-assistant-be/pkg/aichat"
	"legal-assistant-be/pkg/llm/factory"
	"legal-assistant-be/pkg/store"

	pktNats "legal-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController       controller.IChatController
	SessionStreamHandler *handler.SessionStreamHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    *service.AuditService

	WebSocketHub *websocket.Hub
	Logger       logger.ILogger

	closers []func()
}

// NewContainer wires the application. db may be nil, which disables server-side transcripts.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)

	// 2. Infrastructure
	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	var rdb *redis.Client
	var sessionKV store.KeyValueStore
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
		sessionKV = kv.NewRedisStore(rdb, cfg.Session.StoreTTL)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	} else {
		sessionKV = memory.NewKeyValueRepository(cfg.Session.StoreTTL)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 3. AI backend
	var aiClient aichat.Client
	var forgetter service.HistoryForgetter
	switch cfg.Ai.Backend {
	case "llm":
		provider, err := factory.NewLLMProvider(factory.ProviderConfig{
			Provider: cfg.Ai.LLMProvider,
			Model:    cfg.Ai.LLMModel,
			BaseURL:  cfg.Ai.LLMBaseURL,
			APIKey:   cfg.Keys.HuggingFace,
		})
		if err != nil {
			return nil, err
		}
		llmClient := aichat.NewLLMClient(provider, aichat.LLMClientOptions{
			HistoryTTL: cfg.Session.IdleTTL,
			MaxHistory: cfg.Ai.MaxHistory,
		}, sysLogger)
		aiClient, forgetter = llmClient, llmClient
		sysLogger.Info("Bootstrap", "Using LLM backend", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"model":    cfg.Ai.LLMModel,
		})
	default:
		aiClient = aichat.NewHTTPClient(cfg.Ai.ChatURL, cfg.Ai.Timeout, sysLogger)
		sysLogger.Info("Bootstrap", "Using HTTP chat backend", map[string]interface{}{"url": cfg.Ai.ChatURL})
	}

	// 4. Services
	engineCfg := service.ChatEngineConfig{
		AI:        aiClient,
		KV:        sessionKV,
		KeyPrefix: cfg.Session.KeyPrefix,
		IdleTTL:   cfg.Session.IdleTTL,
		Sink:      wsHub,
		Publisher: publisherService,
		Logger:    sysLogger,
	}
	if db != nil {
		uowFactory := unitofwork.NewRepositoryFactory(db)
		engineCfg.Conversations = service.NewConversationService(uowFactory, publisherService, sysLogger)
	} else {
		sysLogger.Warn("Bootstrap", "No database configured, transcripts stay in the browser session only", nil)
	}
	engine := service.NewChatEngineService(engineCfg)

	var forwarder service.EventForwarder
	if natsPub != nil {
		forwarder = natsPub
	}
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, forwarder, sysLogger)

	if natsSub != nil {
		auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
		c.AuditService = service.NewAuditService(natsSub, forgetter, auditLogger)
	}

	// 5. Controllers
	c.ChatController = controller.NewChatController(engine)
	c.SessionStreamHandler = handler.NewSessionStreamHandler(engine, wsHub, wsLogger)
	c.WebSocketHub = wsHub
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	return c, nil
}

// Close releases broker and cache connections in reverse order
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
