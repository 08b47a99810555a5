package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is append-only. Content carries user text, Data the structured
// assistant payload; either may be empty.
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"size:64;not null;index" json:"session_id"`
	Role      string         `gorm:"size:16;not null" json:"role"`
	Content   *string        `gorm:"type:text" json:"content"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// PendingMessage is the queue payload for messages persisted by the
// background worker.
type PendingMessage struct {
	SessionID string         `json:"session_id"`
	Role      string         `json:"role"`
	Content   *string        `json:"content,omitempty"`
	Data      datatypes.JSON `json:"data,omitempty"`
}
