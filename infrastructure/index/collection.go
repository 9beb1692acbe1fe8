package index

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelfware/stockwise/domain/retrieval"
	"github.com/shelfware/stockwise/internal/database"
)

// Float64Slice is a custom type for JSON serialization of []float64 in the
// embedding column.
type Float64Slice []float64

// Scan implements sql.Scanner for reading JSON from the database.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer for writing JSON to the database.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// documentEntity is the collection index row: one embedded document keyed by
// its stable document ID, with metadata stored in-line.
type documentEntity struct {
	ID        int64        `gorm:"column:id;primaryKey;autoIncrement"`
	DocID     string       `gorm:"column:doc_id;uniqueIndex"`
	Text      string       `gorm:"column:text"`
	Metadata  string       `gorm:"column:metadata;type:json"`
	Embedding Float64Slice `gorm:"column:embedding;type:json"`
}

// TableName returns the table name for documentEntity.
func (documentEntity) TableName() string { return "ask_documents" }

// ErrCollectionInitializationFailed indicates the collection index schema
// could not be created.
var ErrCollectionInitializationFailed = errors.New("failed to initialize collection index")

// CollectionIndex is the database-backed vector index: a self-persisting
// collection keyed by document ID. Embeddings are stored as JSON columns
// and scored in memory, so it works identically on SQLite and Postgres.
type CollectionIndex struct {
	db       database.Database
	embedder retrieval.Embedder
	logger   *slog.Logger

	mu          sync.Mutex
	initialized bool
}

// NewCollectionIndex creates a new CollectionIndex.
func NewCollectionIndex(db database.Database, embedder retrieval.Embedder, logger *slog.Logger) *CollectionIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionIndex{
		db:       db,
		embedder: embedder,
		logger:   logger,
	}
}

func (c *CollectionIndex) initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.db.GORM().AutoMigrate(&documentEntity{}); err != nil {
		return errors.Join(ErrCollectionInitializationFailed, err)
	}
	c.initialized = true
	return nil
}

// Build discards any existing collection content and re-indexes docs.
func (c *CollectionIndex) Build(ctx context.Context, docs []retrieval.Document) error {
	if err := c.initialize(); err != nil {
		return err
	}

	entities, err := c.embedToEntities(ctx, docs)
	if err != nil {
		return err
	}

	// Clear and insert in one transaction so concurrent queries see either
	// the old collection or the new one, never an empty table in between.
	err = c.db.Session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&documentEntity{}).Error; err != nil {
			return fmt.Errorf("clear collection: %w", err)
		}
		if len(entities) > 0 {
			if err := tx.Create(&entities).Error; err != nil {
				return fmt.Errorf("insert documents: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("collection index built", "documents", len(entities))
	return nil
}

// Add upserts documents into the collection, keyed by document ID so
// re-indexing replaces rather than duplicates.
func (c *CollectionIndex) Add(ctx context.Context, docs []retrieval.Document) error {
	if err := c.initialize(); err != nil {
		return err
	}

	entities, err := c.embedToEntities(ctx, docs)
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		return nil
	}

	err = c.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_id"}},
		UpdateAll: true,
	}).Create(&entities).Error
	if err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}

	c.logger.Info("collection index extended", "added", len(entities))
	return nil
}

// Query returns up to k nearest entries to text's embedding.
func (c *CollectionIndex) Query(ctx context.Context, text string, k int) ([]retrieval.Hit, error) {
	if err := c.initialize(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []retrieval.Hit{}, nil
	}

	var entities []documentEntity
	if err := c.db.Session(ctx).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}
	if len(entities) == 0 {
		return []retrieval.Hit{}, nil
	}

	embeddings, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors for 1 text", len(embeddings))
	}

	vectors := make([][]float64, len(entities))
	for i, e := range entities {
		vectors[i] = e.Embedding
	}

	neighbors := NearestK(embeddings[0], vectors, k)
	hits := make([]retrieval.Hit, 0, len(neighbors))
	for _, n := range neighbors {
		entity := entities[n.Position()]

		var metadata retrieval.Metadata
		if entity.Metadata != "" {
			if err := json.Unmarshal([]byte(entity.Metadata), &metadata); err != nil {
				c.logger.Warn("skipping entry with corrupt metadata", "doc_id", entity.DocID, "error", err)
				continue
			}
		}
		hits = append(hits, retrieval.NewHit(entity.Text, metadata, n.Distance()))
	}
	return hits, nil
}

// IsPopulated reports whether the collection holds at least one entry,
// answered with a COUNT rather than a full load.
func (c *CollectionIndex) IsPopulated(ctx context.Context) (bool, error) {
	if err := c.initialize(); err != nil {
		return false, err
	}

	var count int64
	if err := c.db.Session(ctx).Model(&documentEntity{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count collection: %w", err)
	}
	return count > 0, nil
}

// Size returns the number of indexed entries.
func (c *CollectionIndex) Size(ctx context.Context) (int64, error) {
	if err := c.initialize(); err != nil {
		return 0, err
	}

	var count int64
	if err := c.db.Session(ctx).Model(&documentEntity{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count collection: %w", err)
	}
	return count, nil
}

func (c *CollectionIndex) embedToEntities(ctx context.Context, docs []retrieval.Document) ([]documentEntity, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text()
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed documents: got %d vectors for %d texts", len(vectors), len(texts))
	}

	entities := make([]documentEntity, len(docs))
	for i, doc := range docs {
		metadata, err := json.Marshal(doc.Metadata())
		if err != nil {
			return nil, fmt.Errorf("encode metadata for %s: %w", doc.ID(), err)
		}
		entities[i] = documentEntity{
			DocID:     doc.ID(),
			Text:      doc.Text(),
			Metadata:  string(metadata),
			Embedding: Float64Slice(vectors[i]),
		}
	}
	return entities, nil
}

var _ retrieval.Index = (*CollectionIndex)(nil)
