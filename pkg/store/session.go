package store

// Mode is the conversation's interaction contract, fixed for the lifetime of a session
type Mode string

const (
	ModeUnselected         Mode = ""
	ModeGeneralInformation Mode = "A" // General legal information
	ModeCaseAssessment     Mode = "B" // Case plausibility assessment
)

// IsValid reports whether m is a selectable mode
func (m Mode) IsValid() bool {
	return m == ModeGeneralInformation || m == ModeCaseAssessment
}

// ParseMode accepts the wire codes ("A"/"B") and the long names used by older clients
func ParseMode(raw string) (Mode, bool) {
	switch raw {
	case "A", "general", "general_information":
		return ModeGeneralInformation, true
	case "B", "case", "case_assessment":
		return ModeCaseAssessment, true
	}
	return ModeUnselected, false
}

func (m Mode) String() string {
	switch m {
	case ModeGeneralInformation:
		return "general_information"
	case ModeCaseAssessment:
		return "case_assessment"
	default:
		return "unselected"
	}
}

// Message is one entry of the transcript. Never mutated after it is appended.
type Message struct {
	Text      string `json:"text"`
	IsUser    bool   `json:"isUser"`
	Timestamp string `json:"timestamp"`

	IsReport bool `json:"isReport,omitempty"`
	IsError  bool `json:"isError,omitempty"`

	// Report metadata copied from the AI backend, nil when absent
	PlausibilityLabel   *string `json:"plausibilityLabel,omitempty"`
	PlausibilitySummary *string `json:"plausibilitySummary,omitempty"`
}

// Session represents the full conversation state of one browser client
type Session struct {
	ConversationID string    `json:"conversationId"` // assigned by the AI backend, "" until then
	Mode           Mode      `json:"mode"`
	Messages       []Message `json:"messages"`
}

// Clone returns a deep copy so callers cannot mutate the owner's transcript
func (s Session) Clone() Session {
	out := Session{
		ConversationID: s.ConversationID,
		Mode:           s.Mode,
		Messages:       make([]Message, len(s.Messages)),
	}
	for i, m := range s.Messages {
		out.Messages[i] = m.clone()
	}
	return out
}

func (m Message) clone() Message {
	out := m
	if m.PlausibilityLabel != nil {
		v := *m.PlausibilityLabel
		out.PlausibilityLabel = &v
	}
	if m.PlausibilitySummary != nil {
		v := *m.PlausibilitySummary
		out.PlausibilitySummary = &v
	}
	return out
}

// IsZero reports whether nothing has happened in the session yet
func (s Session) IsZero() bool {
	return s.ConversationID == "" && s.Mode == ModeUnselected && len(s.Messages) == 0
}
