package dto

import (
	"time"

	"legal-assistant-be/pkg/report"
)

type SelectModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=A B general general_information case case_assessment"`
}

// SendMessageRequest allows an empty message; the engine drops it silently
type SendMessageRequest struct {
	Message string `json:"message" validate:"max=8000"`
}

type ReportResponse struct {
	Index       int             `json:"index"`
	Sections    report.Sections `json:"sections"`
	Label       string          `json:"label,omitempty"`
	Description string          `json:"description,omitempty"`
}

type ConversationSummary struct {
	Id           string     `json:"id"`
	Title        string     `json:"title"`
	MessageCount int64      `json:"message_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}
