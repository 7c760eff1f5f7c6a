package client

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamTruncated is returned when the execution stream ends without a
	// completion frame.
	ErrStreamTruncated = errors.New("execution stream ended before completion")

	// ErrInvalidFrame is returned when a stream frame is not valid JSON.
	ErrInvalidFrame = errors.New("invalid execution stream frame")
)

// APIError is a non-success response from the engine. Message comes from the
// response body when it carries one, otherwise it is "HTTP error <status>".
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// StreamError is an error frame reported by the engine mid-stream.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("engine stream error: %s", e.Message)
}
