package contract

import (
	"context"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/specification"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	DeleteAllByUserEmailUnscoped(ctx context.Context, email string) error // Hard delete messages
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
