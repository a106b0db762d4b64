package models

import "time"

// Message roles form a closed set.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessageModel is one immutable conversation turn. Messages are
// append-only and ordered by creation time within their session.
type ChatMessageModel struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	SessionUUID string    `json:"session_uuid" gorm:"index;not null"`
	Role        string    `json:"role"         gorm:"not null"`
	Content     string    `json:"content"      gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ChatMessageModel) TableName() string { return "chat_messages" }
