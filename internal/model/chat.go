package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage 只追加，过期后由 worker 清理
type ChatMessage struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SessionCode string    `gorm:"size:16;not null" json:"session_code"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	ExpiresAt   time.Time `gorm:"index;not null" json:"expires_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
