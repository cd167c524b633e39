package aichat

import (
	"context"
	"strings"
	"sync"
	"time"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/llm"
	"legal-assistant-be/pkg/report"
	"legal-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type LLMClientOptions struct {
	HistoryTTL time.Duration // how long an idle conversation keeps its context
	MaxHistory int           // messages replayed to the model, oldest dropped first
	Options    []llm.Option
}

// LLMClient answers turns directly from a language model, keeping per-conversation history in memory
type LLMClient struct {
	provider   llm.LLMProvider
	history    *cache.Cache
	maxHistory int
	options    []llm.Option
	logger     logger.ILogger

	mu sync.Mutex // serializes read-modify-write of a conversation's history
}

var _ Client = &LLMClient{}

func NewLLMClient(provider llm.LLMProvider, opts LLMClientOptions, log logger.ILogger) *LLMClient {
	ttl := opts.HistoryTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	maxHistory := opts.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &LLMClient{
		provider:   provider,
		history:    cache.New(ttl, 10*time.Minute),
		maxHistory: maxHistory,
		options:    opts.Options,
		logger:     log,
	}
}

func (c *LLMClient) SendMessage(ctx context.Context, req Request) (Result, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	prior := c.loadHistory(conversationID)

	messages := make([]llm.Message, 0, len(prior)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt(req.Mode)})
	messages = append(messages, prior...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})

	reply, err := c.provider.Chat(ctx, messages, c.options...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		c.logger.Error(logModule, "LLM provider failed", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return Result{Success: false, Reason: err.Error()}, nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Result{Success: false, Reason: "empty response from model"}, nil
	}

	c.appendHistory(conversationID,
		llm.Message{Role: llm.RoleUser, Content: req.Message},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	)

	res := Result{
		Success:        true,
		Response:       reply,
		ConversationID: conversationID,
	}
	if req.Mode == store.ModeCaseAssessment {
		res.PlausibilityLabel, res.PlausibilitySummary = plausibility(reply)
	}
	return res, nil
}

// Forget drops the in-memory history of a conversation
func (c *LLMClient) Forget(conversationID string) {
	c.history.Delete(conversationID)
}

func (c *LLMClient) loadHistory(id string) []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	x, found := c.history.Get(id)
	if !found {
		return nil
	}
	stored := x.([]llm.Message)
	out := make([]llm.Message, len(stored))
	copy(out, stored)
	return out
}

func (c *LLMClient) appendHistory(id string, turn ...llm.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stored []llm.Message
	if x, found := c.history.Get(id); found {
		stored = x.([]llm.Message)
	}
	next := make([]llm.Message, 0, len(stored)+len(turn))
	next = append(next, stored...)
	next = append(next, turn...)
	if len(next) > c.maxHistory {
		next = next[len(next)-c.maxHistory:]
	}
	c.history.Set(id, next, cache.DefaultExpiration)
}

func systemPrompt(mode store.Mode) string {
	if mode == store.ModeCaseAssessment {
		return constant.CaseAssessmentSystemPrompt
	}
	return constant.GeneralInformationSystemPrompt
}

// plausibility derives the report metadata the remote backend would normally supply
func plausibility(reply string) (label, summary *string) {
	sections := report.Parse(reply)
	if sections.ScoreLabel == "" {
		return nil, nil
	}

	ld := report.ExtractLabelAndDescription(strings.TrimSpace(sections.ScoreLabel + " - " + sections.ScoreExplanation))
	label = optionalString(ld.Label)
	if sections.Summary != "" {
		summary = optionalString(sections.Summary)
	} else {
		summary = optionalString(ld.Description)
	}
	return label, summary
}
