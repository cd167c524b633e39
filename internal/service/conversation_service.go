package service

import (
	"context"
	"fmt"
	"time"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/events"

	"github.com/google/uuid"
)

const conversationModule = "ConversationService"

// IConversationService keeps the server-side transcripts of signed-in users
type IConversationService interface {
	conversation.ConversationClient
	ListConversations(ctx context.Context, userEmail string) ([]dto.ConversationSummary, error)
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	logger     logger.ILogger
	now        func() time.Time
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, publisher IPublisherService, log logger.ILogger) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *conversationService) CreateConversation(ctx context.Context, userID, userEmail, title string) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{
		Id:         uuid.New(),
		ExternalId: uuid.NewString(),
		UserId:     userID,
		UserEmail:  userEmail,
		Title:      title,
		CreatedAt:  s.now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}

	s.publish(ctx, events.New(events.ConversationCreated, map[string]interface{}{
		"conversation_id": session.ExternalId,
		"user_id":         userID,
		"user_email":      userEmail,
	}))
	return session.ExternalId, nil
}

// AppendMessage stores one message, creating the session row the first time an id is seen
func (s *conversationService) AppendMessage(ctx context.Context, in conversation.AppendMessageInput) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByExternalID{ExternalID: in.ConversationID})
	if err != nil {
		return err
	}

	now := s.now()
	if session == nil {
		title := "Legal consultation"
		if in.IsUserMessage {
			title = conversation.Title(in.Content)
		}
		session = &entity.ChatSession{
			Id:         uuid.New(),
			ExternalId: in.ConversationID,
			UserId:     in.UserID,
			UserEmail:  in.UserEmail,
			Title:      title,
			CreatedAt:  now,
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return err
		}
	} else {
		session.UpdatedAt = &now
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return err
		}
	}

	role := constant.ChatMessageRoleModel
	if in.IsUserMessage {
		role = constant.ChatMessageRoleUser
	}
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          in.Content,
		Role:          role,
		ChatSessionId: session.Id,
		Metadata:      in.Metadata,
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return err
	}

	return uow.Commit()
}

// DeleteAllForUser hard-deletes every conversation of the user
func (s *conversationService) DeleteAllForUser(ctx context.Context, userEmail string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.ByUserEmail{Email: userEmail})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ExternalId)
	}

	if err := uow.ChatMessageRepository().DeleteAllByUserEmailUnscoped(ctx, userEmail); err != nil {
		return err
	}
	deleted, err := uow.ChatSessionRepository().DeleteAllByUserEmailUnscoped(ctx, userEmail)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info(conversationModule, "Conversations purged", map[string]interface{}{
		"deleted": deleted,
	})
	s.publish(ctx, events.New(events.ConversationsPurged, map[string]interface{}{
		"user_email":       userEmail,
		"deleted":          deleted,
		"conversation_ids": ids,
	}))
	return nil
}

func (s *conversationService) ListConversations(ctx context.Context, userEmail string) ([]dto.ConversationSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.ByUserEmail{Email: userEmail},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ConversationSummary, 0, len(sessions))
	for _, session := range sessions {
		count, err := uow.ChatMessageRepository().Count(ctx, specification.ByChatSessionID{ChatSessionID: session.Id})
		if err != nil {
			return nil, err
		}
		res = append(res, dto.ConversationSummary{
			Id:           session.ExternalId,
			Title:        session.Title,
			MessageCount: count,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
		})
	}
	return res, nil
}

func (s *conversationService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(conversationModule, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
