// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultHost              = "0.0.0.0"
	DefaultPort              = 8080
	DefaultLogLevel          = "INFO"
	DefaultAskK              = 5
	DefaultDistanceThreshold = 1.35
	DefaultLowStockThreshold = 10
	DefaultExpiryWindowDays  = 30
	DefaultEndpointTimeout   = 60 * time.Second
	DefaultEndpointRetries   = 3
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// IndexBackend selects the vector index implementation.
type IndexBackend string

// IndexBackend values.
const (
	// IndexFlat is the file-persisted flat index with a JSON metadata sidecar.
	IndexFlat IndexBackend = "flat"
	// IndexCollection is the database-backed collection index.
	IndexCollection IndexBackend = "collection"
)

// Endpoint configures an AI service endpoint.
type Endpoint struct {
	baseURL    string
	model      string
	apiKey     string
	timeout    time.Duration
	maxRetries int
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		timeout:    DefaultEndpointTimeout,
		maxRetries: DefaultEndpointRetries,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum number of retries.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// Configured reports whether the endpoint has an API key set.
func (e Endpoint) Configured() bool { return e.apiKey != "" }

// WithBaseURL returns a new Endpoint with the specified base URL.
func (e Endpoint) WithBaseURL(u string) Endpoint {
	e.baseURL = u
	return e
}

// WithModel returns a new Endpoint with the specified model.
func (e Endpoint) WithModel(m string) Endpoint {
	e.model = m
	return e
}

// WithAPIKey returns a new Endpoint with the specified API key.
func (e Endpoint) WithAPIKey(k string) Endpoint {
	e.apiKey = k
	return e
}

// WithTimeout returns a new Endpoint with the specified timeout.
func (e Endpoint) WithTimeout(d time.Duration) Endpoint {
	e.timeout = d
	return e
}

// WithMaxRetries returns a new Endpoint with the specified retry count.
func (e Endpoint) WithMaxRetries(n int) Endpoint {
	e.maxRetries = n
	return e
}

// AppConfig holds the full application configuration.
type AppConfig struct {
	host              string
	port              int
	dataDir           string
	dbURL             string
	logLevel          string
	logFormat         LogFormat
	apiKeys           []string
	indexBackend      IndexBackend
	distanceThreshold float64
	lowStockThreshold int
	expiryWindowDays  int
	localModelDir     string
	embedding         Endpoint
	synthesis         Endpoint
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:              DefaultHost,
		port:              DefaultPort,
		logLevel:          DefaultLogLevel,
		logFormat:         LogFormatPretty,
		indexBackend:      IndexCollection,
		distanceThreshold: DefaultDistanceThreshold,
		lowStockThreshold: DefaultLowStockThreshold,
		expiryWindowDays:  DefaultExpiryWindowDays,
		embedding:         NewEndpoint(),
		synthesis:         NewEndpoint(),
	}
}

// Host returns the server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port address to bind to.
func (c AppConfig) Addr() string { return fmt.Sprintf("%s:%d", c.host, c.port) }

// LogLevel returns the configured log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the configured log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns the valid API keys for write-protected routes.
func (c AppConfig) APIKeys() []string { return c.apiKeys }

// IndexBackend returns the selected vector index implementation.
func (c AppConfig) IndexBackend() IndexBackend { return c.indexBackend }

// DistanceThreshold returns the relevance cutoff for retrieval hits.
// Tuned against the default embedding model; override when switching models.
func (c AppConfig) DistanceThreshold() float64 { return c.distanceThreshold }

// LowStockThreshold returns the stock level at or below which a product
// counts as low stock.
func (c AppConfig) LowStockThreshold() int { return c.lowStockThreshold }

// ExpiryWindowDays returns how many days ahead a product counts as expiring.
func (c AppConfig) ExpiryWindowDays() int { return c.expiryWindowDays }

// LocalModelDir returns the directory holding a local embedding model, if any.
func (c AppConfig) LocalModelDir() string { return c.localModelDir }

// Embedding returns the embedding endpoint configuration.
func (c AppConfig) Embedding() Endpoint { return c.embedding }

// Synthesis returns the text-generation endpoint configuration.
func (c AppConfig) Synthesis() Endpoint { return c.synthesis }

// DataDir returns the data directory, defaulting to ".stockwise".
func (c AppConfig) DataDir() string {
	if c.dataDir == "" {
		return ".stockwise"
	}
	return c.dataDir
}

// DBURL returns the database URL, defaulting to a SQLite file in the data dir.
func (c AppConfig) DBURL() string {
	if c.dbURL == "" {
		return "sqlite:///" + filepath.Join(c.DataDir(), "stockwise.db")
	}
	return c.dbURL
}

// IndexPath returns the on-disk path of the flat vector index artifact.
func (c AppConfig) IndexPath() string {
	return filepath.Join(c.DataDir(), "vectors.index")
}

// MetaPath returns the on-disk path of the flat index metadata sidecar.
func (c AppConfig) MetaPath() string {
	return filepath.Join(c.DataDir(), "vectors_meta.json")
}

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir(), 0o755)
}

// WithHost returns a new config with the specified host.
func (c AppConfig) WithHost(host string) AppConfig {
	c.host = host
	return c
}

// WithPort returns a new config with the specified port.
func (c AppConfig) WithPort(port int) AppConfig {
	c.port = port
	return c
}

// WithDataDir returns a new config with the specified data directory.
func (c AppConfig) WithDataDir(dir string) AppConfig {
	c.dataDir = dir
	return c
}

// WithDBURL returns a new config with the specified database URL.
func (c AppConfig) WithDBURL(url string) AppConfig {
	c.dbURL = url
	return c
}

// WithLogLevel returns a new config with the specified log level.
func (c AppConfig) WithLogLevel(level string) AppConfig {
	c.logLevel = level
	return c
}

// WithLogFormat returns a new config with the specified log format.
func (c AppConfig) WithLogFormat(format LogFormat) AppConfig {
	c.logFormat = format
	return c
}

// WithAPIKeys returns a new config with the specified API keys.
func (c AppConfig) WithAPIKeys(keys []string) AppConfig {
	c.apiKeys = keys
	return c
}

// WithIndexBackend returns a new config with the specified index backend.
func (c AppConfig) WithIndexBackend(b IndexBackend) AppConfig {
	c.indexBackend = b
	return c
}

// WithDistanceThreshold returns a new config with the specified threshold.
func (c AppConfig) WithDistanceThreshold(t float64) AppConfig {
	c.distanceThreshold = t
	return c
}

// WithLowStockThreshold returns a new config with the specified threshold.
func (c AppConfig) WithLowStockThreshold(n int) AppConfig {
	c.lowStockThreshold = n
	return c
}

// WithExpiryWindowDays returns a new config with the specified window.
func (c AppConfig) WithExpiryWindowDays(n int) AppConfig {
	c.expiryWindowDays = n
	return c
}

// WithLocalModelDir returns a new config with the specified local model dir.
func (c AppConfig) WithLocalModelDir(dir string) AppConfig {
	c.localModelDir = dir
	return c
}

// WithEmbedding returns a new config with the specified embedding endpoint.
func (c AppConfig) WithEmbedding(e Endpoint) AppConfig {
	c.embedding = e
	return c
}

// WithSynthesis returns a new config with the specified synthesis endpoint.
func (c AppConfig) WithSynthesis(e Endpoint) AppConfig {
	c.synthesis = e
	return c
}
