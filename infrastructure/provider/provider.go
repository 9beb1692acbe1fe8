// Package provider supplies the AI backends: OpenAI-compatible embedding
// and chat completion clients, and a local ONNX embedding model via hugot.
package provider

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotConfigured indicates no API key was supplied for the endpoint.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrEmptyCompletion indicates the model returned no usable output.
	ErrEmptyCompletion = errors.New("empty completion")
)

// ProviderError wraps an upstream API failure with the operation and HTTP
// status that produced it.
type ProviderError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

// NewProviderError creates a new ProviderError.
func NewProviderError(operation string, statusCode int, message string, err error) *ProviderError {
	return &ProviderError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Message represents a chat message.
type Message struct {
	role    string
	content string
}

// NewMessage creates a new Message.
func NewMessage(role, content string) Message {
	return Message{role: role, content: content}
}

// Role returns the message role (e.g., "system", "user").
func (m Message) Role() string { return m.role }

// Content returns the message content.
func (m Message) Content() string { return m.content }

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return NewMessage("system", content)
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return NewMessage("user", content)
}
