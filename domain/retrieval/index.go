package retrieval

import "context"

// Embedder converts text into fixed-dimension embedding vectors, one per
// input text. Deterministic for a fixed model version.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Index is a persistent nearest-neighbour index over embedded documents.
// The index owns its on-disk artifacts; the relational source remains the
// source of truth and the index is a derived, eventually-stale cache.
type Index interface {
	// Build discards any existing index, embeds all document texts and
	// persists the result. Document positions follow insertion order.
	Build(ctx context.Context, docs []Document) error

	// Add appends documents to the index, behaving as Build when the
	// index is empty.
	Add(ctx context.Context, docs []Document) error

	// Query returns up to k nearest entries to text's embedding, ordered
	// by non-decreasing distance. An empty or absent index yields an
	// empty result, not an error.
	Query(ctx context.Context, text string, k int) ([]Hit, error)

	// IsPopulated reports whether the index holds at least one entry.
	// Implementations answer via a lightweight count, not a full load.
	IsPopulated(ctx context.Context) (bool, error)
}
