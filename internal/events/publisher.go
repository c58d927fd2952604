package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/techgadgets/support-chat/internal/model"
)

const (
	// StreamName is the name of the chat events stream.
	StreamName = "CHAT_EVENTS"

	// SubjectPrefix is the prefix for all chat event subjects.
	SubjectPrefix = "chat"
)

// Publisher emits events for durably persisted messages.
type Publisher interface {
	PublishMessage(ctx context.Context, event *model.MessageEvent) error
}

// MessageSubject returns the subject for a persisted message event.
func MessageSubject(conversationID string, sender model.Sender) string {
	return fmt.Sprintf("%s.%s.msg.%s", SubjectPrefix, conversationID, sender)
}

// StreamPublisher publishes events to a JetStream stream.
type StreamPublisher struct {
	client *Client
}

// NewStreamPublisher creates a publisher bound to the client's JetStream
// context.
func NewStreamPublisher(client *Client) *StreamPublisher {
	return &StreamPublisher{client: client}
}

// EnsureStream ensures the chat events stream exists.
func (p *StreamPublisher) EnsureStream(ctx context.Context) error {
	_, err := p.client.js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = p.client.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Persisted chat message events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// PublishMessage publishes a persisted-message event.
func (p *StreamPublisher) PublishMessage(ctx context.Context, event *model.MessageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := MessageSubject(event.ConversationID, event.Sender)
	if _, err := p.client.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// NoopPublisher drops all events. Used when NATS is not configured.
type NoopPublisher struct{}

// PublishMessage discards the event.
func (NoopPublisher) PublishMessage(ctx context.Context, event *model.MessageEvent) error {
	return nil
}
