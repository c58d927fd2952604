package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/techgadgets/support-chat/internal/llm"
	"github.com/techgadgets/support-chat/internal/model"
	"github.com/techgadgets/support-chat/internal/reply"
	"github.com/techgadgets/support-chat/internal/store"
	"github.com/techgadgets/support-chat/pkg/logger"
)

type fakeLLM struct {
	content string
	err     error
	gotReqs []*llm.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.gotReqs = append(f.gotReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

func newService(t *testing.T, client llm.Client) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	gen := reply.NewGenerator(client, "", 0, logger.NewNop())
	return NewService(st, gen, nil, logger.NewNop()), st
}

func TestSendMessageNewConversation(t *testing.T) {
	fake := &fakeLLM{content: "Yes, we ship to Canada."}
	svc, st := newService(t, fake)
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "Do you ship to Canada?"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatal("no conversation id returned")
	}
	if resp.Reply != "Yes, we ship to Canada." {
		t.Fatalf("reply = %q", resp.Reply)
	}

	msgs, err := st.ListMessages(ctx, resp.ConversationID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender != model.SenderUser || msgs[0].Text != "Do you ship to Canada?" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Sender != model.SenderAI || msgs[1].Text != resp.Reply {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}
}

func TestSendMessageReusesExistingConversation(t *testing.T) {
	fake := &fakeLLM{content: "ok"}
	svc, _ := newService(t, fake)
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	second, err := svc.SendMessage(ctx, model.SendMessageRequest{
		Message:        "and again",
		ConversationID: first.ConversationID,
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatalf("conversation id changed: %q -> %q", first.ConversationID, second.ConversationID)
	}
}

func TestSendMessageUnknownIDStartsNewConversation(t *testing.T) {
	fake := &fakeLLM{content: "ok"}
	svc, st := newService(t, fake)
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, model.SendMessageRequest{
		Message:        "hello",
		ConversationID: "stale-session-id",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if resp.ConversationID == "stale-session-id" {
		t.Fatal("stale id was reused")
	}

	exists, _ := st.ConversationExists(ctx, resp.ConversationID)
	if !exists {
		t.Fatal("replacement conversation not persisted")
	}
}

func TestSendMessageValidation(t *testing.T) {
	fake := &fakeLLM{content: "ok"}
	svc, st := newService(t, fake)
	ctx := context.Background()

	cases := []struct {
		name    string
		message string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
		{"too long", strings.Repeat("a", MaxMessageLength+1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: tc.message})

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(fake.gotReqs) != 0 {
				t.Fatal("LLM was invoked for invalid input")
			}
		})
	}

	// Nothing may have been persisted on any rejected request.
	if _, err := st.CreateConversation(ctx); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
}

func TestSendMessageTrimsBeforeValidating(t *testing.T) {
	fake := &fakeLLM{content: "ok"}
	svc, st := newService(t, fake)
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "  hello  "})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	msgs, _ := st.ListMessages(ctx, resp.ConversationID)
	if msgs[0].Text != "hello" {
		t.Fatalf("persisted %q, want trimmed text", msgs[0].Text)
	}
}

func TestSendMessageLLMFailureStillSucceeds(t *testing.T) {
	fake := &fakeLLM{err: &openai.APIError{HTTPStatusCode: 429}}
	svc, st := newService(t, fake)
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("SendMessage should absorb LLM failures, got %v", err)
	}
	if resp.Reply != reply.FallbackRateLimit {
		t.Fatalf("reply = %q, want rate-limit fallback", resp.Reply)
	}

	// The fallback text is persisted as the ai turn.
	msgs, _ := st.ListMessages(ctx, resp.ConversationID)
	if len(msgs) != 2 || msgs[1].Sender != model.SenderAI || msgs[1].Text != reply.FallbackRateLimit {
		t.Fatalf("unexpected persisted turns: %+v", msgs)
	}
}

func TestSendMessageWindowExcludesNewTurnFromHistory(t *testing.T) {
	fake := &fakeLLM{content: "ok"}
	svc, _ := newService(t, fake)
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "first"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := svc.SendMessage(ctx, model.SendMessageRequest{
		Message:        "second",
		ConversationID: resp.ConversationID,
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	// First turn: only the new message. Second turn: two history turns
	// (user "first", ai "ok") plus the new message — no duplicate of
	// "second" in the history portion.
	if len(fake.gotReqs) != 2 {
		t.Fatalf("LLM invoked %d times, want 2", len(fake.gotReqs))
	}
	if n := len(fake.gotReqs[0].Messages); n != 1 {
		t.Fatalf("first window has %d turns, want 1", n)
	}
	second := fake.gotReqs[1].Messages
	if len(second) != 3 {
		t.Fatalf("second window has %d turns, want 3", len(second))
	}
	if second[0].Content != "first" || second[1].Content != "ok" || second[2].Content != "second" {
		t.Fatalf("unexpected second window: %+v", second)
	}
}

func TestSendMessageCausalOrdering(t *testing.T) {
	fake := &fakeLLM{content: "reply"}
	svc, st := newService(t, fake)
	ctx := context.Background()

	var convID string
	for i := 0; i < 5; i++ {
		resp, err := svc.SendMessage(ctx, model.SendMessageRequest{
			Message:        "ping",
			ConversationID: convID,
		})
		if err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
		convID = resp.ConversationID
	}

	msgs, _ := st.ListMessages(ctx, convID)
	for i, m := range msgs {
		if m.Sender == model.SenderAI {
			if i == 0 || msgs[i-1].Sender != model.SenderUser {
				t.Fatalf("ai message at %d not preceded by a user message", i)
			}
		}
	}
}

func TestHistory(t *testing.T) {
	fake := &fakeLLM{content: "hi there"}
	svc, _ := newService(t, fake)
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	hist, err := svc.History(ctx, resp.ConversationID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if hist.ConversationID != resp.ConversationID {
		t.Fatalf("conversation id = %q", hist.ConversationID)
	}
	if len(hist.Messages) != 2 {
		t.Fatalf("history has %d messages, want 2", len(hist.Messages))
	}
	if hist.Messages[0].ID == "" || hist.Messages[0].Timestamp.IsZero() {
		t.Fatalf("history message missing id or timestamp: %+v", hist.Messages[0])
	}
}

func TestHistoryUnknownConversation(t *testing.T) {
	fake := &fakeLLM{content: "ok"}
	svc, _ := newService(t, fake)

	_, err := svc.History(context.Background(), "never-created")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
