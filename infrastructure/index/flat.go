package index

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/shelfware/stockwise/domain/retrieval"
)

// flatEntry is the persisted record for a single indexed document in the
// metadata sidecar, keyed by integer position.
type flatEntry struct {
	ID       string             `json:"id"`
	Text     string             `json:"text"`
	Metadata retrieval.Metadata `json:"metadata"`
}

// FlatIndex is a file-persisted flat vector index: one gob-encoded vector
// file plus a JSON sidecar mapping position to document metadata. Entries
// are positioned by insertion order.
//
// Persistence is best-effort: a failed disk write is logged and swallowed,
// leaving the in-memory index usable for the current process lifetime.
type FlatIndex struct {
	indexPath string
	metaPath  string
	embedder  retrieval.Embedder
	logger    *slog.Logger

	mu      sync.Mutex
	vectors [][]float64
	entries map[int]flatEntry
}

// NewFlatIndex creates a FlatIndex persisted at the given paths. An
// existing index on disk is loaded; a corrupt or unreadable artifact is
// logged and discarded, starting fresh.
func NewFlatIndex(indexPath, metaPath string, embedder retrieval.Embedder, logger *slog.Logger) *FlatIndex {
	if logger == nil {
		logger = slog.Default()
	}

	f := &FlatIndex{
		indexPath: indexPath,
		metaPath:  metaPath,
		embedder:  embedder,
		logger:    logger,
		entries:   map[int]flatEntry{},
	}

	if err := f.load(); err != nil {
		logger.Warn("failed to load flat index, starting fresh", "error", err)
		f.vectors = nil
		f.entries = map[int]flatEntry{}
	}

	return f
}

// Build discards any existing index, embeds all documents and persists.
func (f *FlatIndex) Build(ctx context.Context, docs []retrieval.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buildLocked(ctx, docs)
}

func (f *FlatIndex) buildLocked(ctx context.Context, docs []retrieval.Document) error {
	vectors, err := f.embedAll(ctx, docs)
	if err != nil {
		return err
	}

	f.vectors = vectors
	f.entries = make(map[int]flatEntry, len(docs))
	for i, doc := range docs {
		f.entries[i] = flatEntry{ID: doc.ID(), Text: doc.Text(), Metadata: doc.Metadata()}
	}

	f.persistLocked()
	f.logger.Info("flat index built", "documents", len(docs))
	return nil
}

// Add appends documents to the index, behaving as Build when empty.
func (f *FlatIndex) Add(ctx context.Context, docs []retrieval.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.vectors) == 0 {
		return f.buildLocked(ctx, docs)
	}

	vectors, err := f.embedAll(ctx, docs)
	if err != nil {
		return err
	}

	start := len(f.vectors)
	f.vectors = append(f.vectors, vectors...)
	for i, doc := range docs {
		f.entries[start+i] = flatEntry{ID: doc.ID(), Text: doc.Text(), Metadata: doc.Metadata()}
	}

	f.persistLocked()
	f.logger.Info("flat index extended", "added", len(docs), "total", len(f.vectors))
	return nil
}

// Query returns up to k nearest entries to text's embedding.
func (f *FlatIndex) Query(ctx context.Context, text string, k int) ([]retrieval.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.vectors) == 0 || k <= 0 {
		return []retrieval.Hit{}, nil
	}

	embeddings, err := f.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors for 1 text", len(embeddings))
	}

	neighbors := NearestK(embeddings[0], f.vectors, k)
	hits := make([]retrieval.Hit, 0, len(neighbors))
	for _, n := range neighbors {
		entry, ok := f.entries[n.Position()]
		if !ok {
			continue
		}
		hits = append(hits, retrieval.NewHit(entry.Text, entry.Metadata, n.Distance()))
	}
	return hits, nil
}

// IsPopulated reports whether the index holds at least one entry.
func (f *FlatIndex) IsPopulated(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.vectors) > 0, nil
}

// Size returns the number of indexed entries.
func (f *FlatIndex) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.vectors)
}

func (f *FlatIndex) embedAll(ctx context.Context, docs []retrieval.Document) ([][]float64, error) {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text()
	}

	vectors, err := f.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed documents: got %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

// persistLocked writes both artifacts to disk via temp-file renames so a
// reader never observes a half-written file. Failures are logged and
// swallowed: the in-memory index stays usable but will not survive restart.
func (f *FlatIndex) persistLocked() {
	if err := f.writeArtifacts(); err != nil {
		f.logger.Error("failed to persist flat index", "error", err)
	}
}

func (f *FlatIndex) writeArtifacts() error {
	if dir := filepath.Dir(f.indexPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
	}

	if err := writeAtomic(f.indexPath, func(w *os.File) error {
		return gob.NewEncoder(w).Encode(f.vectors)
	}); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}

	// JSON object keys must be strings; positions are rendered in decimal.
	keyed := make(map[string]flatEntry, len(f.entries))
	for pos, entry := range f.entries {
		keyed[strconv.Itoa(pos)] = entry
	}
	if err := writeAtomic(f.metaPath, func(w *os.File) error {
		return json.NewEncoder(w).Encode(keyed)
	}); err != nil {
		return fmt.Errorf("write metadata file: %w", err)
	}

	return nil
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *FlatIndex) load() error {
	indexFile, err := os.Open(f.indexPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer func() { _ = indexFile.Close() }()

	var vectors [][]float64
	if err := gob.NewDecoder(indexFile).Decode(&vectors); err != nil {
		return fmt.Errorf("decode index file: %w", err)
	}

	metaData, err := os.ReadFile(f.metaPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read metadata file: %w", err)
	}

	keyed := map[string]flatEntry{}
	if err := json.Unmarshal(metaData, &keyed); err != nil {
		return fmt.Errorf("decode metadata file: %w", err)
	}

	entries := make(map[int]flatEntry, len(keyed))
	for key, entry := range keyed {
		pos, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid metadata position %q", key)
		}
		entries[pos] = entry
	}

	f.vectors = vectors
	f.entries = entries
	return nil
}

var _ retrieval.Index = (*FlatIndex)(nil)
