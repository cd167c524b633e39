package conversation

import "context"

type AppendMessageInput struct {
	ConversationID string
	UserID         string
	UserEmail      string
	Content        string
	IsUserMessage  bool
	Metadata       map[string]string
}

// ConversationClient keeps the server-side copy of a signed-in user's transcripts
type ConversationClient interface {
	CreateConversation(ctx context.Context, userID, userEmail, title string) (string, error)
	AppendMessage(ctx context.Context, in AppendMessageInput) error
	DeleteAllForUser(ctx context.Context, userEmail string) error
}

type noopConversationClient struct{}

func (noopConversationClient) CreateConversation(context.Context, string, string, string) (string, error) {
	return "", nil
}

func (noopConversationClient) AppendMessage(context.Context, AppendMessageInput) error { return nil }

func (noopConversationClient) DeleteAllForUser(context.Context, string) error { return nil }
