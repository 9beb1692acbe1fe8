package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/shelfware/stockwise/domain/retrieval"
)

// Fallback answers for the two degraded paths.
const (
	noMatchAnswer = "I can only answer questions about products and sales. I couldn't find relevant information for your question."

	passagePrefix = "Based on retrieved passages:\n\n"
)

// DefaultK is the number of neighbours retrieved when the request does not
// specify one.
const DefaultK = 5

// Synthesizer generates a natural-language answer from retrieved context.
// Any error it returns means "unavailable", never "request failed".
type Synthesizer interface {
	Synthesize(ctx context.Context, question, contextText string) (string, error)
}

// AskResult is the outcome of one question.
type AskResult struct {
	question string
	answer   string
	sources  []retrieval.Hit
}

// Question returns the question as asked.
func (r AskResult) Question() string { return r.question }

// Answer returns the final answer text.
func (r AskResult) Answer() string { return r.answer }

// Sources returns the hits the answer was grounded in. Aggregation answers
// and the no-match fallback carry no sources.
func (r AskResult) Sources() []retrieval.Hit {
	return append([]retrieval.Hit(nil), r.sources...)
}

// AskService answers natural-language questions about the catalog. Count
// and sum questions are routed straight to SQL; everything else goes
// through retrieval, with LLM synthesis when configured and a passage
// concatenation fallback when not.
type AskService struct {
	aggregator  *Aggregator
	projector   *Projector
	index       retrieval.Index
	synthesizer Synthesizer
	threshold   float64
	logger      *slog.Logger

	// populateMu serializes the lazy first-use index population so
	// concurrent first questions embed the corpus once.
	populateMu sync.Mutex
}

// NewAskService creates a new AskService. threshold is the maximum squared
// L2 distance a hit may have to count as relevant.
func NewAskService(
	aggregator *Aggregator,
	projector *Projector,
	index retrieval.Index,
	synthesizer Synthesizer,
	threshold float64,
	logger *slog.Logger,
) *AskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AskService{
		aggregator:  aggregator,
		projector:   projector,
		index:       index,
		synthesizer: synthesizer,
		threshold:   threshold,
		logger:      logger,
	}
}

// Ask answers a question. k caps the number of retrieved passages; values
// below 1 are raised to 1. Errors are returned only for infrastructure
// failures (index population, query embedding, retrieval); synthesis
// failures degrade to the passage fallback instead.
func (s *AskService) Ask(ctx context.Context, question string, k int) (AskResult, error) {
	if s.aggregator.IsAggregation(question) {
		answer, ok, err := s.aggregator.Answer(ctx, question)
		if err != nil {
			return AskResult{}, err
		}
		if ok {
			return AskResult{question: question, answer: answer, sources: []retrieval.Hit{}}, nil
		}
		// Keyword hit but no pattern matched: fall through to retrieval.
	}

	if err := s.ensurePopulated(ctx); err != nil {
		return AskResult{}, fmt.Errorf("initialize vector index: %w", err)
	}

	if k < 1 {
		k = 1
	}

	hits, err := s.index.Query(ctx, question, k)
	if err != nil {
		return AskResult{}, fmt.Errorf("query vector index: %w", err)
	}

	selected := s.filterByDistance(hits)
	if len(selected) == 0 {
		return AskResult{question: question, answer: noMatchAnswer, sources: []retrieval.Hit{}}, nil
	}

	pieces := make([]string, len(selected))
	for i, hit := range selected {
		pieces[i] = hit.Document()
	}
	contextText := strings.Join(pieces, "\n\n")

	answer, err := s.synthesizer.Synthesize(ctx, question, contextText)
	if err != nil {
		s.logger.Info("answer synthesis unavailable, returning passages", "error", err)
		answer = passagePrefix + contextText
	}

	return AskResult{question: question, answer: answer, sources: selected}, nil
}

// filterByDistance keeps hits within the relevance threshold. Hits with an
// unusable distance (NaN) are discarded rather than passed through.
func (s *AskService) filterByDistance(hits []retrieval.Hit) []retrieval.Hit {
	selected := make([]retrieval.Hit, 0, len(hits))
	for _, hit := range hits {
		if math.IsNaN(hit.Distance()) {
			continue
		}
		if hit.Distance() <= s.threshold {
			selected = append(selected, hit)
		}
	}
	return selected
}

// ensurePopulated builds the index from the database on first use. The
// build is skipped when the index already holds entries, so restarts with
// persisted artifacts cost nothing.
func (s *AskService) ensurePopulated(ctx context.Context) error {
	s.populateMu.Lock()
	defer s.populateMu.Unlock()

	populated, err := s.index.IsPopulated(ctx)
	if err != nil {
		return err
	}
	if populated {
		return nil
	}

	docs, err := s.projector.ProjectAll(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	if err := s.index.Build(ctx, docs); err != nil {
		return err
	}

	s.logger.Info("vector index populated", "documents", len(docs))
	return nil
}

// RebuildIndex re-projects the entire catalog and replaces the index
// contents, picking up rows changed since the last build.
func (s *AskService) RebuildIndex(ctx context.Context) (int, error) {
	s.populateMu.Lock()
	defer s.populateMu.Unlock()

	docs, err := s.projector.ProjectAll(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.index.Build(ctx, docs); err != nil {
		return 0, err
	}

	s.logger.Info("vector index rebuilt", "documents", len(docs))
	return len(docs), nil
}
