package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g. EMBEDDING_ENDPOINT_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: .stockwise
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/stockwise.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys for
	// write-protected catalog routes.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// AskIndex selects the vector index backend (flat or collection).
	// Env: ASK_INDEX (default: collection)
	AskIndex string `envconfig:"ASK_INDEX" default:"collection"`

	// AskDistanceThreshold is the maximum squared L2 distance for a
	// retrieval hit to count as relevant. Tuned for the default
	// embedding model; adjust when switching models.
	// Env: ASK_DISTANCE_THRESHOLD (default: 1.35)
	AskDistanceThreshold float64 `envconfig:"ASK_DISTANCE_THRESHOLD" default:"1.35"`

	// LowStockThreshold is the stock level at or below which a product
	// counts as low stock on the dashboard.
	// Env: LOW_STOCK_THRESHOLD (default: 10)
	LowStockThreshold int `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`

	// ExpiryWindowDays is how many days ahead a product counts as expiring.
	// Env: EXPIRY_WINDOW_DAYS (default: 30)
	ExpiryWindowDays int `envconfig:"EXPIRY_WINDOW_DAYS" default:"30"`

	// LocalModelDir is the directory holding a local ONNX embedding model.
	// When set, embeddings are computed in-process instead of via the
	// embedding endpoint.
	// Env: LOCAL_MODEL_DIR
	LocalModelDir string `envconfig:"LOCAL_MODEL_DIR"`

	// EmbeddingEndpoint configures the embedding AI service.
	EmbeddingEndpoint EndpointEnv `envconfig:"EMBEDDING_ENDPOINT"`

	// SynthesisEndpoint configures the answer-synthesis AI service.
	// Leaving its API key unset is not an error: the ask path degrades
	// to a non-generative fallback answer.
	SynthesisEndpoint EndpointEnv `envconfig:"SYNTHESIS_ENDPOINT"`
}

// EndpointEnv holds environment configuration for an AI endpoint.
type EndpointEnv struct {
	// BaseURL is the base URL for the endpoint.
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier (e.g. text-embedding-3-small).
	// Env: *_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: *_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: *_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`
}

func (e EndpointEnv) toEndpoint() Endpoint {
	ep := NewEndpoint().
		WithBaseURL(e.BaseURL).
		WithModel(e.Model).
		WithAPIKey(e.APIKey)
	if e.Timeout > 0 {
		ep = ep.WithTimeout(time.Duration(e.Timeout * float64(time.Second)))
	}
	if e.MaxRetries > 0 {
		ep = ep.WithMaxRetries(e.MaxRetries)
	}
	return ep
}

// LoadEnvConfig reads configuration from environment variables.
func LoadEnvConfig() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig().
		WithHost(e.Host).
		WithPort(e.Port).
		WithDataDir(e.DataDir).
		WithDBURL(e.DBURL).
		WithLogLevel(e.LogLevel).
		WithLocalModelDir(e.LocalModelDir).
		WithDistanceThreshold(e.AskDistanceThreshold).
		WithLowStockThreshold(e.LowStockThreshold).
		WithExpiryWindowDays(e.ExpiryWindowDays).
		WithEmbedding(e.EmbeddingEndpoint.toEndpoint()).
		WithSynthesis(e.SynthesisEndpoint.toEndpoint())

	if strings.EqualFold(e.LogFormat, string(LogFormatJSON)) {
		cfg = cfg.WithLogFormat(LogFormatJSON)
	}

	if strings.EqualFold(e.AskIndex, string(IndexFlat)) {
		cfg = cfg.WithIndexBackend(IndexFlat)
	}

	if e.APIKeys != "" {
		var keys []string
		for _, k := range strings.Split(e.APIKeys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		cfg = cfg.WithAPIKeys(keys)
	}

	return cfg
}
