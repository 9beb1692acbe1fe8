package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/shelfware/stockwise/domain/retrieval"
	"github.com/shelfware/stockwise/internal/config"
)

// errEmbeddingCountMismatch indicates the API returned fewer embedding
// vectors than requested. Retryable: rate-limiting behind a 200 status can
// produce partial responses.
var errEmbeddingCountMismatch = errors.New("embedding response count mismatch")

const (
	defaultChatModel      = "gpt-4o-mini"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultMaxRetries     = 3
	defaultInitialDelay   = 2 * time.Second
	defaultBackoffFactor  = 2.0

	// embedBatchSize texts per API request, embedParallelism requests in
	// flight at once.
	embedBatchSize   = 100
	embedParallelism = 10
)

// OpenAIProvider implements embedding and chat completion against any
// OpenAI-compatible API.
type OpenAIProvider struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
	configured     bool
	maxRetries     int
	initialDelay   time.Duration
	backoffFactor  float64
}

// NewOpenAIProvider creates a provider from an endpoint configuration. An
// endpoint without an API key yields an unconfigured provider whose calls
// fail with ErrNotConfigured.
func NewOpenAIProvider(endpoint config.Endpoint) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(endpoint.APIKey())
	if endpoint.BaseURL() != "" {
		clientConfig.BaseURL = endpoint.BaseURL()
	}
	if endpoint.Timeout() > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: endpoint.Timeout()}
	}

	chatModel := endpoint.Model()
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	embeddingModel := endpoint.Model()
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	maxRetries := endpoint.MaxRetries()
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(clientConfig),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		configured:     endpoint.Configured(),
		maxRetries:     maxRetries,
		initialDelay:   defaultInitialDelay,
		backoffFactor:  defaultBackoffFactor,
	}
}

// Configured reports whether the provider has credentials to call the API.
func (p *OpenAIProvider) Configured() bool { return p.configured }

// Embed generates embeddings for the given texts, batching large inputs
// into parallel API requests. The result keeps input order.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if !p.configured {
		return nil, ErrNotConfigured
	}
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	embeddings := make([][]float64, len(texts))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(embedParallelism)

	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		group.Go(func() error {
			vectors, err := p.embedBatch(groupCtx, texts[start:end])
			if err != nil {
				return err
			}
			copy(embeddings[start:end], vectors)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

func (p *OpenAIProvider) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.embeddingModel),
		Input: texts,
	}

	var resp openai.EmbeddingResponse
	err := p.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = p.client.CreateEmbeddings(ctx, req)
		if callErr != nil {
			return callErr
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("%w: got %d vectors for %d texts", errEmbeddingCountMismatch, len(resp.Data), len(texts))
		}
		return nil
	})
	if err != nil {
		return nil, p.wrapError("embedding", err)
	}

	embeddings := make([][]float64, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = make([]float64, len(data.Embedding))
		for j, v := range data.Embedding {
			embeddings[i][j] = float64(v)
		}
	}
	return embeddings, nil
}

// ChatCompletion generates a chat completion and returns the first choice.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	if !p.configured {
		return "", ErrNotConfigured
	}

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role(),
			Content: m.Content(),
		}
	}

	req := openai.ChatCompletionRequest{
		Model:    p.chatModel,
		Messages: chatMessages,
	}

	var resp openai.ChatCompletionResponse
	err := p.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = p.client.CreateChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		return "", p.wrapError("chat_completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat_completion: %w", ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}

// withRetry executes the function with exponential backoff retry.
func (p *OpenAIProvider) withRetry(ctx context.Context, fn func() error) error {
	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !p.isRetryable(lastErr) {
			return lastErr
		}

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.backoffFactor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryable determines if an error should be retried.
func (p *OpenAIProvider) isRetryable(err error) bool {
	if errors.Is(err, errEmbeddingCountMismatch) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		// Network errors are retryable.
		return true
	}

	return false
}

// wrapError wraps an OpenAI error into a ProviderError.
func (p *OpenAIProvider) wrapError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(operation, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError(operation, 0, err.Error(), err)
}

var _ retrieval.Embedder = (*OpenAIProvider)(nil)
