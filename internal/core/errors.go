package core

// Error codes for protocol-level errors surfaced to clients.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
)
