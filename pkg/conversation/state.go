package conversation

import (
	"errors"

	"legal-assistant-be/pkg/store"
)

var (
	ErrModeNotSelected     = errors.New("conversation: no mode selected")
	ErrModeAlreadySelected = errors.New("conversation: mode already selected")
	ErrInvalidMode         = errors.New("conversation: invalid mode")
	ErrTurnInProgress      = errors.New("conversation: a reply is still pending")
	ErrTurnDiscarded       = errors.New("conversation: reply arrived after the session was reset")
)

// State is derived from the session, never stored
type State int

const (
	StateNoMode State = iota
	StateModeSelected
	StateActive
)

func (s State) String() string {
	switch s {
	case StateModeSelected:
		return "mode_selected"
	case StateActive:
		return "active"
	default:
		return "no_mode"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func stateOf(session store.Session) State {
	switch {
	case !session.Mode.IsValid():
		return StateNoMode
	case session.ConversationID == "":
		return StateModeSelected
	default:
		return StateActive
	}
}

// User identifies the signed-in person; the zero value is an anonymous visitor
type User struct {
	ID    string
	Email string
}

func (u User) Authenticated() bool {
	return u.ID != "" && u.Email != ""
}

// Snapshot is a point-in-time copy of everything the UI renders
type Snapshot struct {
	State       State         `json:"state"`
	Session     store.Session `json:"session"`
	IsTyping    bool          `json:"isTyping"`
	TypingText  string        `json:"typingText,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// Listener is told about every change. It runs outside the controller lock.
type Listener func(Snapshot)
