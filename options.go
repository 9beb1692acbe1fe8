package stockwise

import (
	"log/slog"

	"github.com/shelfware/stockwise/application/service"
	"github.com/shelfware/stockwise/domain/retrieval"
	"github.com/shelfware/stockwise/internal/config"
)

// clientConfig holds construction overrides that do not belong in
// config.AppConfig: pre-built components injected mostly by tests.
type clientConfig struct {
	logger      *slog.Logger
	embedder    retrieval.Embedder
	index       retrieval.Index
	synthesizer service.Synthesizer
}

// Option configures the Client.
type Option func(*config.AppConfig, *clientConfig)

// WithConfig replaces the whole application configuration. Options applied
// after it still take effect.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = cfg
	}
}

// WithSQLite stores data in a SQLite database at the given path.
func WithSQLite(path string) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithDBURL("sqlite:///" + path)
	}
}

// WithPostgres stores data in a PostgreSQL database.
func WithPostgres(dsn string) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithDBURL(dsn)
	}
}

// WithDataDir sets the directory for the database file and flat index
// artifacts.
func WithDataDir(dir string) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithDataDir(dir)
	}
}

// WithOpenAI configures both embedding and answer synthesis against the
// OpenAI API with the given key.
func WithOpenAI(apiKey string) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithEmbedding(c.Embedding().WithAPIKey(apiKey))
		*c = c.WithSynthesis(c.Synthesis().WithAPIKey(apiKey))
	}
}

// WithEmbeddingEndpoint configures the embedding endpoint.
func WithEmbeddingEndpoint(e config.Endpoint) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithEmbedding(e)
	}
}

// WithSynthesisEndpoint configures the answer-synthesis endpoint.
func WithSynthesisEndpoint(e config.Endpoint) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithSynthesis(e)
	}
}

// WithLocalModelDir uses a local ONNX model for embeddings instead of an
// API endpoint.
func WithLocalModelDir(dir string) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithLocalModelDir(dir)
	}
}

// WithIndexBackend selects the vector index implementation.
func WithIndexBackend(b config.IndexBackend) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithIndexBackend(b)
	}
}

// WithDistanceThreshold sets the retrieval relevance cutoff.
func WithDistanceThreshold(t float64) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithDistanceThreshold(t)
	}
}

// WithAPIKeys sets the API keys accepted on write-protected routes.
func WithAPIKeys(keys []string) Option {
	return func(c *config.AppConfig, _ *clientConfig) {
		*c = c.WithAPIKeys(keys)
	}
}

// WithLogger sets the logger used by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(_ *config.AppConfig, e *clientConfig) {
		e.logger = logger
	}
}

// WithEmbedder injects a pre-built embedding provider.
func WithEmbedder(embedder retrieval.Embedder) Option {
	return func(_ *config.AppConfig, e *clientConfig) {
		e.embedder = embedder
	}
}

// WithIndex injects a pre-built vector index.
func WithIndex(idx retrieval.Index) Option {
	return func(_ *config.AppConfig, e *clientConfig) {
		e.index = idx
	}
}

// WithSynthesizer injects a pre-built answer synthesizer.
func WithSynthesizer(s service.Synthesizer) Option {
	return func(_ *config.AppConfig, e *clientConfig) {
		e.synthesizer = s
	}
}
