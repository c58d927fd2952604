// Package reply generates assistant replies and isolates the rest of the
// system from LLM failure modes.
package reply

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/techgadgets/support-chat/internal/llm"
	"github.com/techgadgets/support-chat/internal/prompt"
	"github.com/techgadgets/support-chat/pkg/logger"
	"github.com/techgadgets/support-chat/pkg/metrics"
)

// Fallback replies by failure category. The user always receives one of
// these when the LLM call fails; raw provider errors never reach them.
const (
	FallbackAuth      = "I'm having trouble connecting to my brain right now. Please try again in a moment or contact support at support@techgadgets.com."
	FallbackRateLimit = "I'm a bit overwhelmed with requests right now. Please wait a moment and try again!"
	FallbackTimeout   = "Sorry, I took too long to think! Please try asking your question again."
	FallbackGeneric   = "I'm sorry, I encountered an issue processing your request. Please try again or contact our support team at support@techgadgets.com for assistance."
)

// Generator produces a reply for an assembled context window. It never
// returns an error: failures are classified and replaced with fallback
// text, one fallback per failed turn, no retries.
type Generator struct {
	client  llm.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

// NewGenerator creates a reply generator backed by the given LLM client.
// A zero timeout disables the per-call deadline.
func NewGenerator(client llm.Client, model string, timeout time.Duration, log *logger.Logger) *Generator {
	return &Generator{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  log,
	}
}

// Generate invokes the LLM with the context window and returns usable
// reply text.
func (g *Generator) Generate(ctx context.Context, window prompt.Window) string {
	if g.client == nil {
		metrics.FallbackRepliesTotal.WithLabelValues(string(llm.FailureAuth)).Inc()
		return FallbackAuth
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.Complete(ctx, &llm.CompletionRequest{
		Model:    g.model,
		System:   window.System,
		Messages: window.Turns,
	})
	if err != nil {
		category := llm.Classify(err)
		g.logger.Warn("LLM call failed, serving fallback",
			zap.String("provider", g.client.Name()),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		metrics.RecordLLMRequest(g.client.Name(), "error", time.Since(start).Seconds(), 0, 0)
		metrics.FallbackRepliesTotal.WithLabelValues(string(category)).Inc()
		return fallbackFor(category)
	}

	metrics.RecordLLMRequest(g.client.Name(), "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)

	if resp.Content == "" {
		metrics.FallbackRepliesTotal.WithLabelValues(string(llm.FailureOther)).Inc()
		return FallbackGeneric
	}
	return resp.Content
}

func fallbackFor(category llm.FailureCategory) string {
	switch category {
	case llm.FailureAuth:
		return FallbackAuth
	case llm.FailureRateLimit:
		return FallbackRateLimit
	case llm.FailureTimeout:
		return FallbackTimeout
	default:
		return FallbackGeneric
	}
}
