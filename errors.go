package genai

import "fmt"

// Kind classifies an Error's variant.
type Kind string

const (
	KindAPIError                Kind = "api_error"
	KindParse                   Kind = "parse"
	KindInvalidConfig           Kind = "invalid_config"
	KindMissingThoughtSignature Kind = "missing_thought_signature"
	KindTimeout                 Kind = "timeout"
	KindChannelClosed           Kind = "channel_closed"
	KindWebSocket               Kind = "websocket"
	KindNetwork                 Kind = "network"
	KindSerialization           Kind = "serialization"
	KindAuth                    Kind = "auth"
)

// Error is the single normalized error type surfaced across the SDK; the
// Kind field discriminates variants instead of a family of distinct Go
// error types.
type Error struct {
	Kind    Kind
	Message string
	Status  int    // populated for KindAPIError
	Model   string // populated for KindMissingThoughtSignature
	Err     error  // wrapped cause, populated for WebSocket/Network/Serialization
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAPIError:
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	case KindParse:
		return fmt.Sprintf("parse error: %s", e.Message)
	case KindInvalidConfig:
		return fmt.Sprintf("invalid config: %s", e.Message)
	case KindMissingThoughtSignature:
		return fmt.Sprintf("missing thought signature for model %s", e.Model)
	case KindTimeout:
		return fmt.Sprintf("timeout: %s", e.Message)
	case KindChannelClosed:
		return "channel closed"
	case KindWebSocket:
		return fmt.Sprintf("websocket error: %s", e.Err)
	case KindNetwork:
		return fmt.Sprintf("network error: %s", e.Err)
	case KindSerialization:
		return fmt.Sprintf("serialization error: %s", e.Err)
	case KindAuth:
		return fmt.Sprintf("auth error: %s", e.Message)
	default:
		return e.Message
	}
}

// Unwrap allows errors.Is/errors.As to reach the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func NewAPIError(status int, message string) *Error {
	return &Error{Kind: KindAPIError, Status: status, Message: message}
}

func NewParseError(message string) *Error {
	return &Error{Kind: KindParse, Message: message}
}

func NewInvalidConfigError(message string) *Error {
	return &Error{Kind: KindInvalidConfig, Message: message}
}

func NewMissingThoughtSignatureError(model string) *Error {
	return &Error{Kind: KindMissingThoughtSignature, Model: model}
}

func NewTimeoutError(message string) *Error {
	return &Error{Kind: KindTimeout, Message: message}
}

func NewChannelClosedError() *Error {
	return &Error{Kind: KindChannelClosed}
}

func NewWebSocketError(err error) *Error {
	return &Error{Kind: KindWebSocket, Err: err}
}

func NewNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

func NewSerializationError(err error) *Error {
	return &Error{Kind: KindSerialization, Err: err}
}

func NewAuthError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}
