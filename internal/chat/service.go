// Package chat orchestrates the conversation flow: validation,
// conversation resolution, persistence ordering, context assembly, and
// reply generation.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/techgadgets/support-chat/internal/events"
	"github.com/techgadgets/support-chat/internal/model"
	"github.com/techgadgets/support-chat/internal/prompt"
	"github.com/techgadgets/support-chat/internal/reply"
	"github.com/techgadgets/support-chat/internal/store"
	"github.com/techgadgets/support-chat/pkg/logger"
	"github.com/techgadgets/support-chat/pkg/metrics"
)

// MaxMessageLength is the hard limit on an incoming message. Longer
// input is rejected outright; prompt-side truncation at a lower bound is
// handled separately by the prompt package.
const MaxMessageLength = 2000

// Service is the conversation orchestrator.
//
// Concurrent requests on the same conversation are not serialized: two
// in-flight turns may interleave their appends with each other's context
// reads. That race is accepted; the store's ordering invariants still
// hold for whatever gets persisted.
type Service struct {
	store     store.Store
	generator *reply.Generator
	publisher events.Publisher
	logger    *logger.Logger
}

// NewService creates a new chat service.
func NewService(st store.Store, gen *reply.Generator, pub events.Publisher, log *logger.Logger) *Service {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Service{
		store:     st,
		generator: gen,
		publisher: pub,
		logger:    log,
	}
}

// SendMessage runs one chat turn end to end: validate, resolve the
// conversation, persist the user turn, build the context window, generate
// a reply, persist it, and return it.
//
// The user message is always persisted before the reply is generated and
// before the reply is persisted. There is no retry or rollback: a storage
// failure after validation terminates the request, but earlier persisted
// writes remain.
func (s *Service) SendMessage(ctx context.Context, req model.SendMessageRequest) (*model.SendMessageResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, errEmptyMessage
	}
	if len(message) > MaxMessageLength {
		return nil, errMessageTooLong
	}

	conversationID, err := s.resolveConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithConversation(conversationID)

	userMsgID, err := s.store.AppendMessage(ctx, conversationID, model.SenderUser, message)
	if err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(model.SenderUser)).Inc()
	s.publish(ctx, userMsgID, conversationID, model.SenderUser, message)

	history, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	// The final turn is the message we just persisted; the window builder
	// appends it separately.
	if len(history) > 0 {
		history = history[:len(history)-1]
	}

	window := prompt.Build(history, message)
	replyText := s.generator.Generate(ctx, window)

	aiMsgID, err := s.store.AppendMessage(ctx, conversationID, model.SenderAI, replyText)
	if err != nil {
		return nil, fmt.Errorf("persist reply: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(model.SenderAI)).Inc()
	s.publish(ctx, aiMsgID, conversationID, model.SenderAI, replyText)

	log.Info("chat turn completed",
		zap.Int("history_turns", len(history)),
		zap.Int("reply_len", len(replyText)),
	)

	return &model.SendMessageResponse{
		Reply:          replyText,
		ConversationID: conversationID,
	}, nil
}

// History returns all persisted turns of a conversation in order.
func (s *Service) History(ctx context.Context, conversationID string) (*model.HistoryResponse, error) {
	messages, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	out := make([]model.HistoryMessage, len(messages))
	for i, m := range messages {
		out[i] = model.HistoryMessage{
			ID:        m.ID,
			Sender:    m.Sender,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
	}

	return &model.HistoryResponse{
		ConversationID: conversationID,
		Messages:       out,
	}, nil
}

// resolveConversation reuses a supplied id when it exists and silently
// starts a fresh conversation otherwise. A stale or unknown id is a
// designed recovery path, not an error.
func (s *Service) resolveConversation(ctx context.Context, id string) (string, error) {
	if id != "" {
		exists, err := s.store.ConversationExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("look up conversation: %w", err)
		}
		if exists {
			return id, nil
		}
		s.logger.Info("conversation not found, starting a new one",
			zap.String("stale_id", id),
		)
	}

	newID, err := s.store.CreateConversation(ctx)
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	metrics.ConversationsTotal.Inc()
	return newID, nil
}

func (s *Service) publish(ctx context.Context, msgID, conversationID string, sender model.Sender, text string) {
	err := s.publisher.PublishMessage(ctx, &model.MessageEvent{
		MessageID:      msgID,
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		Timestamp:      time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to publish message event", zap.Error(err))
	}
}
