package aichat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"legal-assistant-be/internal/pkg/logger"

	"github.com/tidwall/gjson"
)

const logModule = "AIChatClient"

// Response bodies are capped; a legal report is a few kilobytes
const maxResponseBytes = 1 << 20

type sendMessageBody struct {
	Message        string  `json:"message"`
	Mode           string  `json:"mode"`
	ConversationID *string `json:"conversationId"`
	UserID         string  `json:"userId,omitempty"`
	UserEmail      string  `json:"userEmail,omitempty"`
}

// HTTPClient posts turns to a remote chat endpoint
type HTTPClient struct {
	url    string
	client *http.Client
	logger logger.ILogger
}

var _ Client = &HTTPClient{}

func NewHTTPClient(url string, timeout time.Duration, log logger.ILogger) *HTTPClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

func (c *HTTPClient) SendMessage(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(sendMessageBody{
		Message:        req.Message,
		Mode:           string(req.Mode),
		ConversationID: optionalString(req.ConversationID),
		UserID:         req.UserID,
		UserEmail:      req.UserEmail,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("ai backend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn(logModule, "AI backend returned non-success status", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   truncate(string(raw), 200),
		})
		reason := fmt.Sprintf("status %d", resp.StatusCode)
		if gjson.ValidBytes(raw) {
			if r := firstString(gjson.ParseBytes(raw), "reason", "error", "message"); r != "" {
				reason = r
			}
		}
		return Result{Success: false, Reason: reason}, nil
	}

	return ParseResult(raw), nil
}

// ParseResult validates a reply body without trusting its shape.
// Missing or mistyped fields degrade to their zero values instead of failing the turn.
func ParseResult(raw []byte) Result {
	if !gjson.ValidBytes(raw) {
		return Result{Success: false, Reason: "invalid json response"}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Result{Success: false, Reason: "unexpected response shape"}
	}

	res := Result{
		Response:       firstString(doc, "response", "message", "reply"),
		ConversationID: firstString(doc, "conversationId", "conversation_id"),
		Reason:         firstString(doc, "reason", "error"),
	}

	if success := doc.Get("success"); success.Exists() {
		res.Success = success.Bool()
	} else {
		res.Success = strings.TrimSpace(res.Response) != ""
	}

	res.PlausibilityLabel = optionalString(firstString(doc, "plausibilityLabel", "plausibility_label"))
	res.PlausibilitySummary = optionalString(firstString(doc, "plausibilitySummary", "plausibility_summary"))
	return res
}

// firstString returns the first path holding a string or number
func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := doc.Get(p)
		switch v.Type {
		case gjson.String, gjson.Number:
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
