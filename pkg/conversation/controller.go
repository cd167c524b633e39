package conversation

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/aichat"
	"legal-assistant-be/pkg/classifier"
	"legal-assistant-be/pkg/report"
	"legal-assistant-be/pkg/sanitizer"
	"legal-assistant-be/pkg/store"
)

const logModule = "ConversationController"

// Phrases that mark an AI reply in case assessment mode as a structured report
var reportMarkers = []string{
	"plausibility score",
	"case summary",
	"legal issues",
	"suggested next steps",
}

type Config struct {
	AI            aichat.Client
	Conversations ConversationClient // nil disables server-side transcripts
	Store         *store.SessionStore
	Classifier    *classifier.Classifier
	Logger        logger.ILogger
	Listener      Listener

	// Pick returns a value in [0, n). Defaults to math/rand.
	Pick func(n int) int
	Now  func() time.Time
}

// Controller owns the session of one browser client.
// The mutex is released only while waiting for the AI backend.
type Controller struct {
	ai            aichat.Client
	conversations ConversationClient
	store         *store.SessionStore
	classifier    *classifier.Classifier
	logger        logger.ILogger
	listener      Listener
	pick          func(n int) int
	now           func() time.Time

	mu          sync.Mutex
	session     store.Session
	user        User
	generation  uint64
	typing      bool
	typingText  string
	suggestions []string
}

func NewController(cfg Config) *Controller {
	c := &Controller{
		ai:            cfg.AI,
		conversations: cfg.Conversations,
		store:         cfg.Store,
		classifier:    cfg.Classifier,
		logger:        cfg.Logger,
		listener:      cfg.Listener,
		pick:          cfg.Pick,
		now:           cfg.Now,
		session:       store.Session{Messages: []store.Message{}},
	}
	if c.conversations == nil {
		c.conversations = noopConversationClient{}
	}
	if c.classifier == nil {
		c.classifier = classifier.NewDefault()
	}
	if c.logger == nil {
		c.logger = logger.NewNopLogger()
	}
	if c.pick == nil {
		c.pick = rand.Intn
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Restore replaces the in-memory session with the persisted one
func (c *Controller) Restore(ctx context.Context) {
	c.mu.Lock()
	c.generation++
	c.session = c.store.Load(ctx)
	c.resetTurnLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug(logModule, "Session restored", map[string]interface{}{
		"state":    snap.State.String(),
		"messages": len(snap.Session.Messages),
	})
	c.notify(snap)
}

func (c *Controller) SetUser(u User) {
	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// ReportSections parses the message at index if it is a report
func (c *Controller) ReportSections(index int) (report.Sections, bool) {
	c.mu.Lock()
	if index < 0 || index >= len(c.session.Messages) || !c.session.Messages[index].IsReport {
		c.mu.Unlock()
		return report.Sections{}, false
	}
	text := c.session.Messages[index].Text
	c.mu.Unlock()

	return report.Parse(text), true
}

// SelectMode locks the session into mode and greets the user.
// Earlier server-side conversations of the user are deleted first.
func (c *Controller) SelectMode(ctx context.Context, mode store.Mode) error {
	if !mode.IsValid() {
		return ErrInvalidMode
	}

	c.mu.Lock()
	if c.session.Mode != store.ModeUnselected {
		c.mu.Unlock()
		return ErrModeAlreadySelected
	}

	if c.user.Email != "" {
		if err := c.conversations.DeleteAllForUser(ctx, c.user.Email); err != nil {
			c.logger.Warn(logModule, "Failed to delete previous conversations", map[string]interface{}{
				"email": c.user.Email,
				"error": err.Error(),
			})
		}
	}

	c.session = store.Session{
		Mode: mode,
		Messages: []store.Message{{
			Text:      greeting(mode),
			Timestamp: c.timestamp(),
		}},
	}
	c.resetTurnLocked()
	c.store.Save(ctx, c.session)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info(logModule, "Mode selected", map[string]interface{}{
		"mode": mode.String(),
	})
	c.notify(snap)
	return nil
}

// StartNewConversation wipes the session and the user's server-side transcripts.
// Any reply still in flight is discarded when it arrives.
func (c *Controller) StartNewConversation(ctx context.Context) {
	c.mu.Lock()
	if c.user.Email != "" {
		if err := c.conversations.DeleteAllForUser(ctx, c.user.Email); err != nil {
			c.logger.Warn(logModule, "Failed to delete conversations on reset", map[string]interface{}{
				"email": c.user.Email,
				"error": err.Error(),
			})
		}
	}

	c.generation++
	c.session = store.Session{Messages: []store.Message{}}
	c.resetTurnLocked()
	c.store.Clear(ctx)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info(logModule, "Conversation reset", nil)
	c.notify(snap)
}

// Submit sends one user turn. Empty and placeholder input is ignored.
// Backend failures become an error message in the transcript, not a returned error.
func (c *Controller) Submit(ctx context.Context, text string) error {
	if isDegenerate(text) {
		return nil
	}

	c.mu.Lock()
	if !c.session.Mode.IsValid() {
		c.mu.Unlock()
		return ErrModeNotSelected
	}
	if c.typing {
		c.mu.Unlock()
		return ErrTurnInProgress
	}

	mode := c.session.Mode
	gen := c.generation
	user := c.user
	conversationID := c.session.ConversationID

	c.session.Messages = append(c.session.Messages, store.Message{
		Text:      text,
		IsUser:    true,
		Timestamp: c.timestamp(),
	})
	c.suggestions = nil
	if c.classifier.IsVague(text) {
		c.suggestions = c.classifier.Suggestions(c.pick)
	}
	c.typing = true
	c.typingText = c.typingPhrase(mode)
	c.store.Save(ctx, c.session)

	userPersisted := false
	if user.Authenticated() && conversationID != "" {
		c.appendRemote(ctx, conversationID, user, text, true, nil)
		userPersisted = true
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	payload := text
	if c.fitsMode(mode, text) {
		payload = constant.ModeLockDirective + text
	}

	res, err := c.ai.SendMessage(ctx, aichat.Request{
		Message:        payload,
		Mode:           mode,
		ConversationID: conversationID,
		UserID:         user.ID,
		UserEmail:      user.Email,
	})

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.logger.Info(logModule, "Discarding reply for a reset session", nil)
		return ErrTurnDiscarded
	}
	c.resetTypingLocked()

	var cleaned string
	if err == nil && res.Success {
		if c.session.ConversationID == "" && res.ConversationID != "" {
			c.session.ConversationID = res.ConversationID
		}
		cleaned = sanitizer.Sanitize(res.Response, mode)
	}
	if cleaned == "" {
		details := map[string]interface{}{"mode": mode.String()}
		if err != nil {
			details["error"] = err.Error()
		} else {
			details["reason"] = res.Reason
		}
		c.logger.Error(logModule, "AI turn failed", details)

		c.session.Messages = append(c.session.Messages, store.Message{
			Text:      constant.GenericErrorMessage,
			Timestamp: c.timestamp(),
			IsError:   true,
		})
		c.store.Save(ctx, c.session)
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return nil
	}

	reply := store.Message{
		Text:      cleaned,
		Timestamp: c.timestamp(),
	}
	if isReport(mode, cleaned) {
		reply.IsReport = true
		reply.PlausibilityLabel = copyString(res.PlausibilityLabel)
		reply.PlausibilitySummary = copyString(res.PlausibilitySummary)
	}
	c.session.Messages = append(c.session.Messages, reply)

	if user.Authenticated() {
		c.persistTurnLocked(ctx, user, text, userPersisted, reply, mode)
	}
	c.store.Save(ctx, c.session)
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// persistTurnLocked mirrors a finished turn to the transcript store.
// A conversation is created when the backend assigned no id.
func (c *Controller) persistTurnLocked(ctx context.Context, user User, text string, userPersisted bool, reply store.Message, mode store.Mode) {
	conversationID := c.session.ConversationID
	if conversationID == "" {
		id, err := c.conversations.CreateConversation(ctx, user.ID, user.Email, Title(text))
		if err != nil || id == "" {
			details := map[string]interface{}{"user_id": user.ID}
			if err != nil {
				details["error"] = err.Error()
			}
			c.logger.Warn(logModule, "Could not create conversation, transcript not persisted", details)
			return
		}
		c.session.ConversationID = id
		conversationID = id
	}

	if !userPersisted {
		c.appendRemote(ctx, conversationID, user, text, true, nil)
	}

	metadata := map[string]string{"mode": mode.String()}
	if reply.IsReport {
		metadata["is_report"] = "true"
		if reply.PlausibilityLabel != nil {
			metadata["plausibility_label"] = *reply.PlausibilityLabel
		}
		if reply.PlausibilitySummary != nil {
			metadata["plausibility_summary"] = *reply.PlausibilitySummary
		}
	}
	c.appendRemote(ctx, conversationID, user, reply.Text, false, metadata)
}

func (c *Controller) appendRemote(ctx context.Context, conversationID string, user User, content string, isUser bool, metadata map[string]string) {
	err := c.conversations.AppendMessage(ctx, AppendMessageInput{
		ConversationID: conversationID,
		UserID:         user.ID,
		UserEmail:      user.Email,
		Content:        content,
		IsUserMessage:  isUser,
		Metadata:       metadata,
	})
	if err != nil {
		c.logger.Warn(logModule, "Failed to persist message", map[string]interface{}{
			"conversation_id": conversationID,
			"is_user":         isUser,
			"error":           err.Error(),
		})
	}
}

func (c *Controller) fitsMode(mode store.Mode, text string) bool {
	switch mode {
	case store.ModeCaseAssessment:
		return c.classifier.FitsCaseAssessment(text)
	case store.ModeGeneralInformation:
		return c.classifier.FitsGeneralInformation(text)
	}
	return false
}

func (c *Controller) typingPhrase(mode store.Mode) string {
	bank := constant.GeneralInformationTypingPhrases
	if mode == store.ModeCaseAssessment {
		bank = constant.CaseAssessmentTypingPhrases
	}
	if len(bank) == 0 {
		return ""
	}
	i := c.pick(len(bank))
	if i < 0 || i >= len(bank) {
		i = 0
	}
	return bank[i]
}

func (c *Controller) snapshotLocked() Snapshot {
	var suggestions []string
	if len(c.suggestions) > 0 {
		suggestions = append([]string(nil), c.suggestions...)
	}
	return Snapshot{
		State:       stateOf(c.session),
		Session:     c.session.Clone(),
		IsTyping:    c.typing,
		TypingText:  c.typingText,
		Suggestions: suggestions,
	}
}

func (c *Controller) resetTypingLocked() {
	c.typing = false
	c.typingText = ""
}

func (c *Controller) resetTurnLocked() {
	c.resetTypingLocked()
	c.suggestions = nil
}

func (c *Controller) notify(snap Snapshot) {
	if c.listener != nil {
		c.listener(snap)
	}
}

func (c *Controller) timestamp() string {
	return c.now().UTC().Format(time.RFC3339)
}

func greeting(mode store.Mode) string {
	if mode == store.ModeCaseAssessment {
		return constant.CaseAssessmentGreeting
	}
	return constant.GeneralInformationGreeting
}

func isDegenerate(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "" || trimmed == "{}" || trimmed == "[]"
}

func isReport(mode store.Mode, text string) bool {
	if mode != store.ModeCaseAssessment {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range reportMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Title is the single-line, length-capped title derived from a first message
func Title(text string) string {
	title := strings.Join(strings.Fields(text), " ")
	runes := []rune(title)
	if len(runes) > constant.ConversationTitleMaxLength {
		title = strings.TrimSpace(string(runes[:constant.ConversationTitleMaxLength])) + "..."
	}
	return title
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
