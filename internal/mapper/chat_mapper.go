package mapper

import (
	"fmt"
	"time"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	return &entity.ChatSession{
		Id:         s.Id,
		ExternalId: s.ExternalId,
		UserId:     s.UserId,
		UserEmail:  s.UserEmail,
		Title:      s.Title,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  optionalTime(s.UpdatedAt),
		DeletedAt:  deletedTime(s.DeletedAt),
		IsDeleted:  s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:         s.Id,
		ExternalId: s.ExternalId,
		UserId:     s.UserId,
		UserEmail:  s.UserEmail,
		Title:      s.Title,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  gormDeletedAt(s.DeletedAt, s.IsDeleted),
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var metadata map[string]string
	if len(msg.Metadata) > 0 {
		metadata = make(map[string]string, len(msg.Metadata))
		for k, v := range msg.Metadata {
			if s, ok := v.(string); ok {
				metadata[k] = s
			} else {
				metadata[k] = fmt.Sprint(v)
			}
		}
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ChatSessionId: msg.ChatSessionId,
		Metadata:      metadata,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     optionalTime(msg.UpdatedAt),
		DeletedAt:     deletedTime(msg.DeletedAt),
		IsDeleted:     msg.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var metadata datatypes.JSONMap
	if len(msg.Metadata) > 0 {
		metadata = make(datatypes.JSONMap, len(msg.Metadata))
		for k, v := range msg.Metadata {
			metadata[k] = v
		}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ChatSessionId: msg.ChatSessionId,
		Metadata:      metadata,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     gormDeletedAt(msg.DeletedAt, msg.IsDeleted),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func deletedTime(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func gormDeletedAt(t *time.Time, isDeleted bool) gorm.DeletedAt {
	if t != nil {
		return gorm.DeletedAt{Time: *t, Valid: true}
	}
	if isDeleted {
		return gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return gorm.DeletedAt{}
}
