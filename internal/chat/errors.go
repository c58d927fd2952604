package chat

// ValidationError marks user-correctable input problems. Handlers surface
// its message with a 400; nothing is persisted once validation fails.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	errEmptyMessage   = &ValidationError{Message: "Message cannot be empty"}
	errMessageTooLong = &ValidationError{Message: "Message is too long. Maximum 2000 characters allowed."}
)
