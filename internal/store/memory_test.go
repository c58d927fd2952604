package store

import (
	"context"
	"errors"
	"testing"

	"github.com/techgadgets/support-chat/internal/model"
)

func TestCreateConversationAllocatesUniqueIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := s.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation: %v", err)
		}
		if id == "" {
			t.Fatal("empty conversation id")
		}
		if seen[id] {
			t.Fatalf("duplicate conversation id %q", id)
		}
		seen[id] = true
	}
}

func TestConversationExistsIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.CreateConversation(ctx)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	for i := 0; i < 3; i++ {
		ok, err := s.ConversationExists(ctx, id)
		if err != nil {
			t.Fatalf("ConversationExists: %v", err)
		}
		if !ok {
			t.Fatalf("conversation %q should exist on check %d", id, i)
		}
	}

	ok, err := s.ConversationExists(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("ConversationExists: %v", err)
	}
	if ok {
		t.Fatal("unknown id reported as existing")
	}
}

func TestAppendMessageUnknownConversation(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.AppendMessage(context.Background(), "no-such-id", model.SenderUser, "hello")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendMessageAdvancesUpdatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.CreateConversation(ctx)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	before := s.conversations[id].UpdatedAt

	if _, err := s.AppendMessage(ctx, id, model.SenderUser, "hello"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	after := s.conversations[id].UpdatedAt

	if after.Before(before) {
		t.Fatalf("updated_at went backwards: %v -> %v", before, after)
	}
}

func TestListMessagesOrderingIsStable(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.CreateConversation(ctx)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	// Appends in the same clock tick must keep insertion order.
	texts := []string{"first", "second", "third", "fourth"}
	for i, txt := range texts {
		sender := model.SenderUser
		if i%2 == 1 {
			sender = model.SenderAI
		}
		if _, err := s.AppendMessage(ctx, id, sender, txt); err != nil {
			t.Fatalf("AppendMessage(%q): %v", txt, err)
		}
	}

	msgs, err := s.ListMessages(ctx, id)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != len(texts) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(texts))
	}
	for i, m := range msgs {
		if m.Text != texts[i] {
			t.Fatalf("message %d = %q, want %q", i, m.Text, texts[i])
		}
		if i > 0 {
			prev := msgs[i-1]
			if m.Timestamp.Before(prev.Timestamp) {
				t.Fatalf("timestamps not non-decreasing at %d", i)
			}
			if m.Seq <= prev.Seq {
				t.Fatalf("seq not strictly increasing at %d", i)
			}
		}
	}
}

func TestListMessagesEmptyConversation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.CreateConversation(ctx)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	msgs, err := s.ListMessages(ctx, id)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(msgs))
	}

	if _, err := s.ListMessages(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown conversation, got %v", err)
	}
}

func TestListMessagesReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, _ := s.CreateConversation(ctx)
	if _, err := s.AppendMessage(ctx, id, model.SenderUser, "hello"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	msgs, _ := s.ListMessages(ctx, id)
	msgs[0].Text = "mutated"

	again, _ := s.ListMessages(ctx, id)
	if again[0].Text != "hello" {
		t.Fatal("internal state mutated via returned slice")
	}
}
