package service

import (
	"context"
	"testing"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type forgetRecorder struct{ ids []string }

func (f *forgetRecorder) Forget(id string) { f.ids = append(f.ids, id) }

func TestAuditForgetsPurgedConversations(t *testing.T) {
	forgetter := &forgetRecorder{}
	svc := NewAuditService(nil, forgetter, logger.NewNopLogger())

	// Events decoded from NATS carry JSON arrays as []interface{}
	raw, err := events.Encode(events.New(events.ConversationsPurged, map[string]interface{}{
		"user_email":       "ana@example.com",
		"deleted":          2,
		"conversation_ids": []string{"c1", "c2"},
	}))
	require.NoError(t, err)
	decoded, err := events.Decode(raw)
	require.NoError(t, err)

	require.NoError(t, svc.HandleEvent(context.Background(), decoded))
	assert.Equal(t, []string{"c1", "c2"}, forgetter.ids)
}

func TestAuditIgnoresOtherEvents(t *testing.T) {
	forgetter := &forgetRecorder{}
	svc := NewAuditService(nil, forgetter, logger.NewNopLogger())

	require.NoError(t, svc.HandleEvent(context.Background(), events.New(events.ModeSelected, map[string]interface{}{"mode": "A"})))
	assert.Empty(t, forgetter.ids)
}
