// Package model defines data structures for the support chat backend.
package model

import (
	"time"
)

// Conversation represents a chat thread between one visitor and the
// support assistant. Conversations are created implicitly on the first
// message of a session and are never deleted by the service itself.
type Conversation struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name used by GORM.
func (Conversation) TableName() string {
	return "conversations"
}
