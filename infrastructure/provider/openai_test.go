package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfware/stockwise/internal/config"
)

func TestOpenAIProvider_Unconfigured(t *testing.T) {
	p := NewOpenAIProvider(config.NewEndpoint())
	assert.False(t, p.Configured())

	_, err := p.Embed(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = p.ChatCompletion(context.Background(), []Message{UserMessage("hi")})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAIProvider_EmbedEmptyInput(t *testing.T) {
	p := NewOpenAIProvider(config.NewEndpoint().WithAPIKey("test-key"))
	require.True(t, p.Configured())

	vectors, err := p.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProvider(config.NewEndpoint().WithAPIKey("test-key"))

	assert.Equal(t, defaultChatModel, p.chatModel)
	assert.Equal(t, defaultEmbeddingModel, p.embeddingModel)
	assert.Equal(t, defaultMaxRetries, p.maxRetries)
}

func TestOpenAIProvider_ModelOverride(t *testing.T) {
	p := NewOpenAIProvider(config.NewEndpoint().WithAPIKey("k").WithModel("custom-model").WithMaxRetries(7))

	assert.Equal(t, "custom-model", p.chatModel)
	assert.Equal(t, "custom-model", p.embeddingModel)
	assert.Equal(t, 7, p.maxRetries)
}

func TestIsRetryable(t *testing.T) {
	p := NewOpenAIProvider(config.NewEndpoint().WithAPIKey("k"))

	assert.True(t, p.isRetryable(errEmbeddingCountMismatch))
	assert.False(t, p.isRetryable(context.Canceled))
	assert.False(t, p.isRetryable(ErrNotConfigured))
}

func TestProviderError(t *testing.T) {
	err := NewProviderError("embedding", 429, "rate limited", nil)
	assert.Equal(t, "embedding: status 429: rate limited", err.Error())

	err = NewProviderError("chat_completion", 0, "boom", nil)
	assert.Equal(t, "chat_completion: boom", err.Error())
}
