package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/techgadgets/support-chat/internal/model"
)

// MemoryStore is an in-memory Store used in tests and when no database
// DSN is configured. It preserves the same ordering guarantees as the
// MySQL implementation.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*model.Conversation
	messages      map[string][]model.Message
	seq           uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*model.Conversation),
		messages:      make(map[string][]model.Message),
	}
}

// CreateConversation allocates a new conversation record.
func (s *MemoryStore) CreateConversation(ctx context.Context) (string, error) {
	now := time.Now()
	conv := &model.Conversation{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.mu.Unlock()

	return conv.ID, nil
}

// ConversationExists reports whether the conversation is persisted.
func (s *MemoryStore) ConversationExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	_, ok := s.conversations[id]
	s.mu.RUnlock()
	return ok, nil
}

// AppendMessage persists one message and advances the conversation's
// updated_at.
func (s *MemoryStore) AppendMessage(ctx context.Context, conversationID string, sender model.Sender, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return "", ErrNotFound
	}

	s.seq++
	msg := model.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		Timestamp:      time.Now(),
		Seq:            s.seq,
	}
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	conv.UpdatedAt = msg.Timestamp

	return msg.ID, nil
}

// ListMessages returns the conversation's messages in insertion order,
// which by construction is timestamp order with ties resolved by seq.
func (s *MemoryStore) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return nil, ErrNotFound
	}

	src := s.messages[conversationID]
	out := make([]model.Message, len(src))
	copy(out, src)
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
