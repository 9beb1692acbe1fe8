package index

import (
	"context"
	"errors"
	"fmt"
)

// stubEmbedder maps known texts to fixed vectors and counts Embed calls.
type stubEmbedder struct {
	vectors map[string][]float64
	calls   int
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	out := make([][]float64, len(texts))
	for i, text := range texts {
		v, ok := s.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no stub vector for %q", text)
		}
		out[i] = v
	}
	return out, nil
}

var errEmbedUnavailable = errors.New("embedding backend unavailable")
