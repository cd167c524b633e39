package aichat

import (
	"context"

	"legal-assistant-be/pkg/store"
)

// Request is one user turn sent to the AI backend
type Request struct {
	Message        string
	Mode           store.Mode
	ConversationID string // "" when the conversation has not been assigned an id yet
	UserID         string
	UserEmail      string
}

// Result is the backend reply, validated at the edge.
// Success false means the backend answered but reported a failure; Reason carries its explanation.
type Result struct {
	Success        bool
	Response       string
	ConversationID string

	PlausibilityLabel   *string
	PlausibilitySummary *string

	Reason string
}

// Client sends user turns to an AI backend.
// A returned error means the request never produced a usable reply (transport failure, cancellation).
type Client interface {
	SendMessage(ctx context.Context, req Request) (Result, error)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
