package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/pkg/aichat"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/events"
	"legal-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	sends map[string]int
}

func (s *recordingSink) SendToClient(clientID, messageType string, _ interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sends == nil {
		s.sends = map[string]int{}
	}
	s.sends[clientID+"/"+messageType]++
}

func (s *recordingSink) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends[key]
}

const caseReport = `Case Summary:
The tenant's deposit was withheld without an inspection.

Plausibility Score: 75% - Likely - the lease terms favour the tenant.

Suggested Next Steps:
- Send a written demand letter`

func newEngineForTest(ai aichat.Client, kv store.KeyValueStore) (IChatEngineService, *recordingSink, *fakePublisher) {
	sink := &recordingSink{}
	pub := &fakePublisher{}
	engine := NewChatEngineService(ChatEngineConfig{
		AI:        ai,
		KV:        kv,
		KeyPrefix: "legalchat",
		Sink:      sink,
		Publisher: pub,
	})
	return engine, sink, pub
}

func TestEngineFullTurn(t *testing.T) {
	ctx := context.Background()
	ai := &fakeAI{result: aichat.Result{Success: true, Response: caseReport, ConversationID: "conv-1"}}
	engine, sink, pub := newEngineForTest(ai, memory.NewKeyValueRepository(0))
	anon := conversation.User{}

	snap := engine.Session(ctx, "client-1", anon)
	assert.Equal(t, conversation.StateNoMode, snap.State)

	snap, err := engine.SelectMode(ctx, "client-1", anon, "B")
	require.NoError(t, err)
	assert.Equal(t, store.ModeCaseAssessment, snap.Session.Mode)
	assert.Equal(t, []string{events.ModeSelected}, pub.types())

	snap, err = engine.Submit(ctx, "client-1", anon, "My landlord kept my deposit after I moved out")
	require.NoError(t, err)
	require.Len(t, snap.Session.Messages, 3)
	assert.Equal(t, "conv-1", snap.Session.ConversationID)
	assert.True(t, snap.Session.Messages[2].IsReport)
	assert.Greater(t, sink.count("client-1/"+SnapshotMessageType), 0)

	rep, err := engine.Report(ctx, "client-1", anon, 2)
	require.NoError(t, err)
	assert.Equal(t, "75", rep.Sections.Score)
	assert.Equal(t, "Likely", rep.Label)

	_, err = engine.Report(ctx, "client-1", anon, 1)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestEngineIsolatesClients(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngineForTest(&fakeAI{}, memory.NewKeyValueRepository(0))

	_, err := engine.SelectMode(ctx, "client-a", conversation.User{}, "A")
	require.NoError(t, err)

	snap := engine.Session(ctx, "client-b", conversation.User{})
	assert.Equal(t, conversation.StateNoMode, snap.State)
}

func TestEngineRestoresFromStore(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueRepository(0)

	first, _, _ := newEngineForTest(&fakeAI{}, kv)
	_, err := first.SelectMode(ctx, "client-1", conversation.User{}, "general")
	require.NoError(t, err)

	// A second instance sharing the store sees the same session
	second, _, _ := newEngineForTest(&fakeAI{}, kv)
	snap := second.Session(ctx, "client-1", conversation.User{})
	assert.Equal(t, store.ModeGeneralInformation, snap.Session.Mode)
	assert.Len(t, snap.Session.Messages, 1)
}

func TestEngineWrapsSentinelErrors(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngineForTest(&fakeAI{}, memory.NewKeyValueRepository(0))

	_, err := engine.SelectMode(ctx, "c", conversation.User{}, "Z")
	assert.True(t, errors.Is(err, conversation.ErrInvalidMode))

	_, err = engine.Submit(ctx, "c", conversation.User{}, "hello there")
	assert.True(t, errors.Is(err, conversation.ErrModeNotSelected))

	_, err = engine.SelectMode(ctx, "c", conversation.User{}, "A")
	require.NoError(t, err)
	_, err = engine.SelectMode(ctx, "c", conversation.User{}, "B")
	assert.True(t, errors.Is(err, conversation.ErrModeAlreadySelected))
}

func TestEngineStartNewClearsSession(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueRepository(0)
	engine, _, _ := newEngineForTest(&fakeAI{}, kv)

	_, err := engine.SelectMode(ctx, "c", conversation.User{}, "A")
	require.NoError(t, err)

	snap := engine.StartNew(ctx, "c", conversation.User{})
	assert.Equal(t, conversation.StateNoMode, snap.State)
	assert.Empty(t, snap.Session.Messages)
	_, found, _ := kv.Get(ctx, "legalchat:c:mode")
	assert.False(t, found)
}

func TestEngineListConversationsWithoutDatabase(t *testing.T) {
	engine, _, _ := newEngineForTest(&fakeAI{}, memory.NewKeyValueRepository(0))

	list, err := engine.ListConversations(context.Background(), conversation.User{ID: "u1", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Empty(t, list)
}
