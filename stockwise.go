// Package stockwise provides an inventory and sales backend with
// retrieval-augmented question answering.
//
// Products and sales live in a relational database. Each row is projected
// into a plain-text document, embedded, and indexed for nearest-neighbour
// retrieval; questions are answered from the retrieved passages by an LLM
// when one is configured, with graceful fallbacks when it is not.
//
// Basic usage:
//
//	client, err := stockwise.New(
//	    stockwise.WithSQLite(".stockwise/stockwise.db"),
//	    stockwise.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Ask.Ask(ctx, "how many products do we have?", 5)
package stockwise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfware/stockwise/application/service"
	"github.com/shelfware/stockwise/domain/retrieval"
	"github.com/shelfware/stockwise/infrastructure/index"
	"github.com/shelfware/stockwise/infrastructure/persistence"
	"github.com/shelfware/stockwise/infrastructure/provider"
	"github.com/shelfware/stockwise/internal/config"
	"github.com/shelfware/stockwise/internal/database"
	"github.com/shelfware/stockwise/internal/log"
)

// DefaultAskK is the number of passages retrieved per question when the
// request does not specify one.
const DefaultAskK = config.DefaultAskK

// ErrNoEmbedder indicates neither an embedding endpoint nor a local model
// was configured.
var ErrNoEmbedder = errors.New("no embedding provider configured")

// Client is the main entry point for the stockwise library.
//
// Access services via struct fields:
//
//	client.Ask.Ask(ctx, "question", 5)
//	client.Catalog.CreateProduct(ctx, product)
//	client.Dashboard.Summary(ctx)
type Client struct {
	Ask       *service.AskService
	Catalog   *service.CatalogService
	Dashboard *service.DashboardService

	cfg      config.AppConfig
	db       database.Database
	embedder retrieval.Embedder
	index    retrieval.Index
	logger   *slog.Logger
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := config.NewAppConfig()
	var extra clientConfig
	for _, opt := range opts {
		opt(&cfg, &extra)
	}

	logger := extra.logger
	if logger == nil {
		logger = log.NewLogger(cfg).Slog()
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.DBURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	embedder, err := buildEmbedder(cfg, extra, logger)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(err, errClose)
	}

	idx := extra.index
	if idx == nil {
		idx = buildIndex(cfg, db, embedder, logger)
	}

	synthesizer := extra.synthesizer
	if synthesizer == nil {
		synthesizer = provider.NewSynthesizer(provider.NewOpenAIProvider(cfg.Synthesis()))
	}

	products := persistence.NewProductStore(db)
	sales := persistence.NewSaleStore(db)

	client := &Client{
		cfg:      cfg,
		db:       db,
		embedder: embedder,
		index:    idx,
		logger:   logger,

		Catalog:   service.NewCatalogService(products, sales, logger),
		Dashboard: service.NewDashboardService(products, sales, cfg),
		Ask: service.NewAskService(
			service.NewAggregator(products, sales),
			service.NewProjector(products, sales),
			idx,
			synthesizer,
			cfg.DistanceThreshold(),
			logger,
		),
	}

	return client, nil
}

// buildEmbedder picks the embedding provider: an explicit override first,
// then a local ONNX model when one is on disk, then the embedding endpoint.
func buildEmbedder(cfg config.AppConfig, extra clientConfig, logger *slog.Logger) (retrieval.Embedder, error) {
	if extra.embedder != nil {
		return extra.embedder, nil
	}

	if dir := cfg.LocalModelDir(); dir != "" {
		local := provider.NewHugotEmbedding(dir)
		if local.Available() {
			logger.Info("using local embedding model", "model_dir", dir)
			return local, nil
		}
		logger.Warn("no usable model in local model dir, falling back to endpoint", "model_dir", dir)
	}

	if cfg.Embedding().Configured() {
		return provider.NewOpenAIProvider(cfg.Embedding()), nil
	}

	return nil, ErrNoEmbedder
}

func buildIndex(cfg config.AppConfig, db database.Database, embedder retrieval.Embedder, logger *slog.Logger) retrieval.Index {
	if cfg.IndexBackend() == config.IndexFlat {
		return index.NewFlatIndex(cfg.IndexPath(), cfg.MetaPath(), embedder, logger)
	}
	return index.NewCollectionIndex(db, embedder, logger)
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Config returns the client's configuration.
func (c *Client) Config() config.AppConfig { return c.cfg }

// Database returns the underlying database handle.
func (c *Client) Database() database.Database { return c.db }

// Close releases the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
