package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is the server-side copy of one conversation.
// ExternalId is the id the AI backend (or CreateConversation) handed to the browser.
type ChatSession struct {
	Id         uuid.UUID
	ExternalId string
	UserId     string
	UserEmail  string
	Title      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
