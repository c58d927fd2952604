// Package store provides durable conversation and message persistence.
// It is the sole source of truth for conversation history.
package store

import (
	"context"
	"errors"

	"github.com/techgadgets/support-chat/internal/model"
)

// ErrNotFound is returned when a referenced conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// Store is the persistence contract for conversations and messages.
//
// Any failure other than ErrNotFound is a storage failure and is fatal
// for the current request; callers must not report partial success.
type Store interface {
	// CreateConversation allocates a new globally unique conversation id
	// and persists the conversation record.
	CreateConversation(ctx context.Context) (string, error)

	// ConversationExists reports whether a conversation with the given id
	// is currently persisted.
	ConversationExists(ctx context.Context, id string) (bool, error)

	// AppendMessage persists one message and advances the conversation's
	// updated_at. Returns ErrNotFound if the conversation does not exist.
	AppendMessage(ctx context.Context, conversationID string, sender model.Sender, text string) (string, error)

	// ListMessages returns all messages for the conversation ordered by
	// timestamp ascending, ties broken by insertion order. An existing
	// conversation with no messages yields an empty slice, not an error.
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)

	// Ping reports whether the backing datastore is reachable.
	Ping(ctx context.Context) error
}
