package store

import (
	"context"
	"errors"
	"testing"

	"legal-assistant-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	data    map[string]string
	failGet bool
	failSet map[string]bool
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string]string{}, failSet: map[string]bool{}}
}

func (m *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	if m.failGet {
		return "", false, errors.New("storage unavailable")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStore) Set(_ context.Context, key, value string) error {
	if m.failSet[key] {
		return errors.New("quota exceeded")
	}
	m.data[key] = value
	return nil
}

func (m *mapStore) Remove(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func strPtr(s string) *string { return &s }

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMapStore()
	s := NewSessionStore(kv, "legalchat:abc", logger.NewNopLogger())

	session := Session{
		ConversationID: "conv-1",
		Mode:           ModeCaseAssessment,
		Messages: []Message{
			{Text: "greeting", Timestamp: "10:00"},
			{Text: "I was fired", IsUser: true, Timestamp: "10:01"},
			{
				Text:                "Plausibility Score: 72% - Likely",
				Timestamp:           "10:02",
				IsReport:            true,
				PlausibilityLabel:   strPtr("Likely"),
				PlausibilitySummary: strPtr("Strong evidence."),
			},
		},
	}
	s.Save(ctx, session)

	assert.Equal(t, "conv-1", kv.data["legalchat:abc:conversation_id"])
	assert.Equal(t, "B", kv.data["legalchat:abc:mode"])
	assert.Contains(t, kv.data["legalchat:abc:messages"], `"isUser":true`)

	assert.Equal(t, session, s.Load(ctx))
}

func TestSessionStoreLoadEmpty(t *testing.T) {
	s := NewSessionStore(newMapStore(), "p", logger.NewNopLogger())

	got := s.Load(context.Background())
	assert.True(t, got.IsZero())
	assert.NotNil(t, got.Messages)
}

func TestSessionStoreLoadPartial(t *testing.T) {
	kv := newMapStore()
	kv.data["p:mode"] = "A"
	s := NewSessionStore(kv, "p", logger.NewNopLogger())

	got := s.Load(context.Background())
	assert.Equal(t, ModeGeneralInformation, got.Mode)
	assert.Empty(t, got.ConversationID)
	assert.Empty(t, got.Messages)
}

func TestSessionStoreCorruptRecordsAreIsolated(t *testing.T) {
	kv := newMapStore()
	kv.data["p:conversation_id"] = "conv-9"
	kv.data["p:messages"] = "{not json"
	kv.data["p:mode"] = "Z"
	s := NewSessionStore(kv, "p", logger.NewNopLogger())

	got := s.Load(context.Background())
	assert.Equal(t, "conv-9", got.ConversationID)
	assert.Equal(t, ModeUnselected, got.Mode)
	assert.Equal(t, []Message{}, got.Messages)
}

func TestSessionStoreSaveRemovesEmptyFields(t *testing.T) {
	ctx := context.Background()
	kv := newMapStore()
	s := NewSessionStore(kv, "p", logger.NewNopLogger())

	s.Save(ctx, Session{ConversationID: "c", Mode: ModeGeneralInformation})
	require.Len(t, kv.data, 3)

	s.Save(ctx, Session{})
	assert.NotContains(t, kv.data, "p:conversation_id")
	assert.NotContains(t, kv.data, "p:mode")
	assert.Equal(t, "[]", kv.data["p:messages"])
}

func TestSessionStoreFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	kv := newMapStore()
	kv.failSet["p:messages"] = true
	s := NewSessionStore(kv, "p", logger.NewNopLogger())

	assert.NotPanics(t, func() {
		s.Save(ctx, Session{ConversationID: "c", Mode: ModeCaseAssessment, Messages: []Message{{Text: "x"}}})
	})
	// The other records are still written
	assert.Equal(t, "c", kv.data["p:conversation_id"])
	assert.Equal(t, "B", kv.data["p:mode"])

	kv.failGet = true
	got := s.Load(ctx)
	assert.True(t, got.IsZero())
}

func TestSessionStoreClear(t *testing.T) {
	ctx := context.Background()
	kv := newMapStore()
	kv.data["other:mode"] = "A"
	s := NewSessionStore(kv, "p", logger.NewNopLogger())

	s.Save(ctx, Session{ConversationID: "c", Mode: ModeCaseAssessment})
	s.Clear(ctx)

	assert.Equal(t, map[string]string{"other:mode": "A"}, kv.data)
}

func TestSessionCloneIsDeep(t *testing.T) {
	orig := Session{Messages: []Message{{Text: "a", PlausibilityLabel: strPtr("Likely")}}}
	cp := orig.Clone()

	cp.Messages[0].Text = "b"
	*cp.Messages[0].PlausibilityLabel = "Unlikely"

	assert.Equal(t, "a", orig.Messages[0].Text)
	assert.Equal(t, "Likely", *orig.Messages[0].PlausibilityLabel)
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("case_assessment")
	assert.True(t, ok)
	assert.Equal(t, ModeCaseAssessment, m)

	m, ok = ParseMode("A")
	assert.True(t, ok)
	assert.Equal(t, ModeGeneralInformation, m)

	_, ok = ParseMode("")
	assert.False(t, ok)
	assert.False(t, ModeUnselected.IsValid())
}
