package model

import (
	"time"
	"unicode/utf8"
)

const (
	DefaultSessionTitle = "New Chat"

	autoTitleMaxRunes = 60
	autoTitleEllipsis = "..."
)

type ChatSession struct {
	ID        string        `gorm:"primaryKey;size:64" json:"id"`
	UserID    uint          `gorm:"not null;index" json:"user_id"`
	Title     string        `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `gorm:"index" json:"updated_at"`
	Messages  []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

type SessionSummary struct {
	ID           string    `json:"id"`
	UserID       uint      `json:"user_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"message_count"`
}

func (s *ChatSession) Summary(messageCount int64) SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		UserID:       s.UserID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: messageCount,
	}
}

// DeriveTitle builds a session title from the first user message.
func DeriveTitle(content string) string {
	if utf8.RuneCountInString(content) <= autoTitleMaxRunes {
		return content
	}
	return string([]rune(content)[:autoTitleMaxRunes]) + autoTitleEllipsis
}
