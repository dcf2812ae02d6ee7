package models

import (
	"time"

	"gorm.io/datatypes"
)

// AI message roles as stored and forwarded to the chat completion provider.
const (
	AIMessageRoleUser      = "user"
	AIMessageRoleAssistant = "assistant"
)

// AIConversation groups tutor exchanges for one user, optionally anchored to
// a problem. Token counts are summed per conversation for usage visibility.
type AIConversation struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	ProblemID   *uint       `gorm:"index" json:"problem_id,omitempty"`
	Title       string      `gorm:"size:255" json:"title"`
	TotalTokens int         `gorm:"not null;default:0" json:"total_tokens"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Messages    []AIMessage `gorm:"foreignKey:ConversationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"messages"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// AIMessage is a single turn within a tutor conversation. History is stored
// server side so clients cannot tamper with token accounting.
type AIMessage struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	ConversationID uint              `gorm:"not null;index" json:"conversation_id"`
	Role           string            `gorm:"size:16;not null" json:"role"`
	Content        string            `gorm:"type:text" json:"content"`
	Tokens         int               `gorm:"not null;default:0" json:"tokens"`
	Raw            datatypes.JSONMap `gorm:"type:json" json:"raw,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
