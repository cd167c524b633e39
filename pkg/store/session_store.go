package store

import (
	"context"
	"encoding/json"

	"legal-assistant-be/internal/pkg/logger"
)

const logModule = "SessionStore"

// Record names. Each field is stored under its own key so one corrupt
// record never invalidates the other two.
const (
	KeyConversationID = "conversation_id"
	KeyMessages       = "messages"
	KeyMode           = "mode"
)

// KeyValueStore is the durable text storage the session is mirrored into
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// SessionStore mirrors a Session into a KeyValueStore.
// It never returns errors: failures are logged and the in-memory session stays authoritative.
type SessionStore struct {
	kv     KeyValueStore
	prefix string
	logger logger.ILogger
}

// NewSessionStore scopes all keys under prefix (typically "legalchat:<client id>")
func NewSessionStore(kv KeyValueStore, prefix string, log logger.ILogger) *SessionStore {
	return &SessionStore{
		kv:     kv,
		prefix: prefix,
		logger: log,
	}
}

func (s *SessionStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

// Load rebuilds a session from whatever subset of records is present
func (s *SessionStore) Load(ctx context.Context) Session {
	session := Session{Messages: []Message{}}

	if id, ok := s.get(ctx, KeyConversationID); ok {
		session.ConversationID = id
	}

	if raw, ok := s.get(ctx, KeyMode); ok {
		if mode, valid := ParseMode(raw); valid {
			session.Mode = mode
		} else {
			s.logger.Warn(logModule, "Ignoring unknown stored mode", map[string]interface{}{
				"key":  s.key(KeyMode),
				"mode": raw,
			})
		}
	}

	if raw, ok := s.get(ctx, KeyMessages); ok {
		var messages []Message
		if err := json.Unmarshal([]byte(raw), &messages); err != nil {
			s.logger.Warn(logModule, "Discarding corrupt message record", map[string]interface{}{
				"key":   s.key(KeyMessages),
				"error": err.Error(),
			})
		} else if messages != nil {
			session.Messages = messages
		}
	}

	return session
}

// Save writes the three records independently; a failed write does not stop the others
func (s *SessionStore) Save(ctx context.Context, session Session) {
	if session.ConversationID == "" {
		s.remove(ctx, KeyConversationID)
	} else {
		s.set(ctx, KeyConversationID, session.ConversationID)
	}

	messages := session.Messages
	if messages == nil {
		messages = []Message{}
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		s.logger.Error(logModule, "Failed to encode messages", map[string]interface{}{
			"key":   s.key(KeyMessages),
			"error": err.Error(),
		})
	} else {
		s.set(ctx, KeyMessages, string(payload))
	}

	if session.Mode == ModeUnselected {
		s.remove(ctx, KeyMode)
	} else {
		s.set(ctx, KeyMode, string(session.Mode))
	}
}

// Clear removes every record of the session
func (s *SessionStore) Clear(ctx context.Context) {
	s.remove(ctx, KeyConversationID)
	s.remove(ctx, KeyMessages)
	s.remove(ctx, KeyMode)
}

func (s *SessionStore) get(ctx context.Context, name string) (string, bool) {
	value, found, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		s.logger.Warn(logModule, "Storage read failed", map[string]interface{}{
			"key":   s.key(name),
			"error": err.Error(),
		})
		return "", false
	}
	return value, found
}

func (s *SessionStore) set(ctx context.Context, name, value string) {
	if err := s.kv.Set(ctx, s.key(name), value); err != nil {
		s.logger.Warn(logModule, "Storage write failed", map[string]interface{}{
			"key":   s.key(name),
			"error": err.Error(),
		})
	}
}

func (s *SessionStore) remove(ctx context.Context, name string) {
	if err := s.kv.Remove(ctx, s.key(name)); err != nil {
		s.logger.Warn(logModule, "Storage remove failed", map[string]interface{}{
			"key":   s.key(name),
			"error": err.Error(),
		})
	}
}
