package model

import (
	"time"
)

// Sender identifies who authored a message. The set is closed: only the
// visitor and the assistant ever write to a conversation.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Valid reports whether s is one of the permitted sender values.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAI
}

// Message represents one turn in a conversation.
//
// Seq is a monotonic insertion counter assigned by the store. Messages are
// ordered by Timestamp ascending with Seq breaking ties, so ordering stays
// deterministic even when two messages land in the same clock tick.
type Message struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);not null;index" json:"conversation_id"`
	Sender         Sender    `gorm:"type:varchar(8);not null" json:"sender"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Timestamp      time.Time `gorm:"autoCreateTime" json:"timestamp"`
	Seq            uint64    `gorm:"autoIncrement;uniqueIndex" json:"-"`

	Conversation *Conversation `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name used by GORM.
func (Message) TableName() string {
	return "messages"
}

// SendMessageRequest is the request body for sending a chat message.
// ConversationID is optional: absent or unknown ids transparently start a
// new conversation.
type SendMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// SendMessageResponse is the response after a reply has been generated
// and persisted.
type SendMessageResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversationId"`
}

// HistoryMessage is the wire representation of one persisted turn.
type HistoryMessage struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse is the response for a conversation history lookup.
type HistoryResponse struct {
	ConversationID string           `json:"conversationId"`
	Messages       []HistoryMessage `json:"messages"`
}

// MessageEvent is published to the event stream whenever a message is
// durably persisted.
type MessageEvent struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}
