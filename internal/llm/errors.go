package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

// FailureCategory classifies a failed LLM call so the caller can pick an
// appropriate user-facing fallback.
type FailureCategory string

const (
	// FailureAuth means the provider rejected our credentials.
	FailureAuth FailureCategory = "auth"
	// FailureRateLimit means the provider is throttling us.
	FailureRateLimit FailureCategory = "rate_limit"
	// FailureTimeout means the call did not complete in time.
	FailureTimeout FailureCategory = "timeout"
	// FailureOther covers everything else.
	FailureOther FailureCategory = "other"
)

// Classify maps a provider error to a failure category. It understands
// both SDKs' API error types, context deadlines, and network timeouts,
// and falls back to message inspection for wrapped errors.
func Classify(err error) FailureCategory {
	if err == nil {
		return FailureOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	if c, ok := classifyStatus(statusCode(err)); ok {
		return c
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication"):
		return FailureAuth
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") || strings.Contains(msg, "overloaded"):
		return FailureRateLimit
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return FailureTimeout
	}
	return FailureOther
}

func statusCode(err error) int {
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode
	}
	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		return openaiErr.HTTPStatusCode
	}
	return 0
}

func classifyStatus(status int) (FailureCategory, bool) {
	switch status {
	case 401, 403:
		return FailureAuth, true
	case 429:
		return FailureRateLimit, true
	case 408, 504:
		return FailureTimeout, true
	case 0:
		return FailureOther, false
	default:
		return FailureOther, true
	}
}
