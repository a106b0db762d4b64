package models

import "time"

// ChatSessionModel is a conversation session, optionally tied to a paper.
// UpdatedAt is refreshed every time a message is appended.
type ChatSessionModel struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	UUID      string    `json:"uuid"       gorm:"uniqueIndex;not null"`
	PaperID   *uint     `json:"paper_id"   gorm:"index"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChatSessionModel) TableName() string { return "chat_sessions" }
