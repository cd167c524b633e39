package mapper

import (
	"testing"
	"time"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestChatSessionMapping(t *testing.T) {
	m := NewChatMapper()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	e := &entity.ChatSession{
		Id:         uuid.New(),
		ExternalId: "conv-1",
		UserId:     "u1",
		UserEmail:  "u1@example.com",
		Title:      "Unpaid wages",
		CreatedAt:  created,
	}

	back := m.ChatSessionToEntity(m.ChatSessionToModel(e))
	assert.Equal(t, e, back)
	assert.Nil(t, m.ChatSessionToEntity(nil))
}

func TestChatSessionMappingDeleted(t *testing.T) {
	m := NewChatMapper()
	deleted := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)

	e := m.ChatSessionToEntity(&model.ChatSession{DeletedAt: gorm.DeletedAt{Time: deleted, Valid: true}})
	assert.True(t, e.IsDeleted)
	require.NotNil(t, e.DeletedAt)
	assert.Equal(t, deleted, *e.DeletedAt)

	mdl := m.ChatSessionToModel(&entity.ChatSession{IsDeleted: true})
	assert.True(t, mdl.DeletedAt.Valid)
}

func TestChatMessageMetadata(t *testing.T) {
	m := NewChatMapper()

	mdl := m.ChatMessageToModel(&entity.ChatMessage{
		Chat:     "report",
		Role:     "model",
		Metadata: map[string]string{"is_report": "true", "plausibility_label": "Likely"},
	})
	assert.Equal(t, datatypes.JSONMap{"is_report": "true", "plausibility_label": "Likely"}, mdl.Metadata)

	mdl.Metadata["score"] = float64(72)
	e := m.ChatMessageToEntity(mdl)
	assert.Equal(t, "72", e.Metadata["score"])
	assert.Equal(t, "Likely", e.Metadata["plausibility_label"])

	assert.Nil(t, m.ChatMessageToModel(&entity.ChatMessage{}).Metadata)
}
