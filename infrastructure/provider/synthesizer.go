package provider

import (
	"context"
	"fmt"
	"strings"
)

const synthesisSystemPrompt = "You are an assistant that answers questions only using the provided context about products and sales. If the context doesn't contain the answer, say you can't find it."

// ChatCompleter is the slice of a chat provider the synthesizer needs.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, messages []Message) (string, error)
	Configured() bool
}

// Synthesizer turns a question and retrieved context into a natural-language
// answer via a chat model. Callers treat every returned error as a signal to
// fall back, never as a request failure.
type Synthesizer struct {
	completer ChatCompleter
}

// NewSynthesizer creates a new Synthesizer.
func NewSynthesizer(completer ChatCompleter) *Synthesizer {
	return &Synthesizer{completer: completer}
}

// Synthesize generates an answer grounded in the supplied context. It
// returns ErrNotConfigured when no chat credentials exist, ErrEmptyCompletion
// when the model returns a blank answer, or the provider error on failure.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextText string) (string, error) {
	if s.completer == nil || !s.completer.Configured() {
		return "", ErrNotConfigured
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer concisely using only the context.", contextText, question)

	answer, err := s.completer.ChatCompletion(ctx, []Message{
		SystemMessage(synthesisSystemPrompt),
		UserMessage(prompt),
	})
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyCompletion
	}
	return answer, nil
}
