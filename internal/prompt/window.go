package prompt

import (
	"github.com/techgadgets/support-chat/internal/llm"
	"github.com/techgadgets/support-chat/internal/model"
)

const (
	// MaxHistoryTurns bounds how many prior turns enter the window.
	MaxHistoryTurns = 10

	// MaxTurnLength bounds a single turn inside the prompt. Longer user
	// messages are truncated in the window only; the persisted message is
	// never altered.
	MaxTurnLength = 1000

	truncationMarker = "... (message truncated)"
)

// Window is the bounded, ordered context sent to the reply generator.
type Window struct {
	// System is the fixed identity and store-knowledge preamble.
	System string
	// Turns holds at most MaxHistoryTurns prior turns followed by the new
	// user turn, oldest first.
	Turns []llm.ChatMessage
}

// Build assembles a context window from the conversation history and the
// new user message. History must be ordered oldest first and must not
// include the just-persisted user message; the new message is always
// appended as the final turn.
func Build(history []model.Message, userMessage string) Window {
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}

	turns := make([]llm.ChatMessage, 0, len(history)+1)
	for _, msg := range history {
		turns = append(turns, llm.ChatMessage{
			Role:    roleFor(msg.Sender),
			Content: msg.Text,
		})
	}
	turns = append(turns, llm.ChatMessage{
		Role:    "user",
		Content: Truncate(userMessage),
	})

	return Window{
		System: SystemPrompt(),
		Turns:  turns,
	}
}

// Truncate shortens text to MaxTurnLength with a visible marker. This is
// cosmetic for the prompt; stored messages keep their full text.
func Truncate(text string) string {
	if len(text) <= MaxTurnLength {
		return text
	}
	return text[:MaxTurnLength] + truncationMarker
}

func roleFor(sender model.Sender) string {
	if sender == model.SenderUser {
		return "user"
	}
	return "assistant"
}
