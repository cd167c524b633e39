package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalId string         `gorm:"type:varchar(128);not null;uniqueIndex"`
	UserId     string         `gorm:"type:varchar(128);not null;index"`
	UserEmail  string         `gorm:"type:varchar(255);not null;index"` // purges are keyed by email
	Title      string         `gorm:"type:text;not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
