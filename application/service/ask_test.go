package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/domain/retrieval"
	"github.com/shelfware/stockwise/infrastructure/persistence"
	"github.com/shelfware/stockwise/internal/testdb"
)

// fakeIndex records calls and serves canned hits.
type fakeIndex struct {
	builds    int
	built     []retrieval.Document
	hits      []retrieval.Hit
	queryErr  error
	populated bool
	lastK     int
}

func (f *fakeIndex) Build(_ context.Context, docs []retrieval.Document) error {
	f.builds++
	f.built = docs
	f.populated = len(docs) > 0
	return nil
}

func (f *fakeIndex) Add(_ context.Context, docs []retrieval.Document) error {
	f.built = append(f.built, docs...)
	return nil
}

func (f *fakeIndex) Query(_ context.Context, _ string, k int) ([]retrieval.Hit, error) {
	f.lastK = k
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.hits, nil
}

func (f *fakeIndex) IsPopulated(_ context.Context) (bool, error) {
	return f.populated, nil
}

type fakeSynthesizer struct {
	answer string
	err    error
	calls  int
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func newAskFixture(t *testing.T, idx *fakeIndex, synth Synthesizer) *AskService {
	t.Helper()
	db := testdb.New(t)
	products := persistence.NewProductStore(db)
	sales := persistence.NewSaleStore(db)

	ctx := context.Background()
	product, err := products.Save(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 30))
	require.NoError(t, err)
	_, err = sales.Save(ctx, catalog.NewSale(product.ID(), 2, time.Now(), 20))
	require.NoError(t, err)

	return NewAskService(
		NewAggregator(products, sales),
		NewProjector(products, sales),
		idx,
		synth,
		1.35,
		nil,
	)
}

func TestAsk_AggregationBypassesRetrieval(t *testing.T) {
	idx := &fakeIndex{}
	s := newAskFixture(t, idx, &fakeSynthesizer{answer: "unused"})

	result, err := s.Ask(context.Background(), "How many products do we have?", 5)
	require.NoError(t, err)

	assert.Equal(t, "The total number of products in the database is 1.", result.Answer())
	assert.Empty(t, result.Sources())
	assert.Zero(t, idx.builds)
	assert.Zero(t, idx.lastK)
}

func TestAsk_SynthesizedAnswer(t *testing.T) {
	idx := &fakeIndex{hits: []retrieval.Hit{
		retrieval.NewHit("Product Name: Milk", retrieval.Metadata{"type": "product"}, 0.4),
	}}
	synth := &fakeSynthesizer{answer: "We stock Milk from DairyCo."}
	s := newAskFixture(t, idx, synth)

	result, err := s.Ask(context.Background(), "what milk do we stock?", 5)
	require.NoError(t, err)

	assert.Equal(t, "We stock Milk from DairyCo.", result.Answer())
	require.Len(t, result.Sources(), 1)
	assert.Equal(t, "Product Name: Milk", result.Sources()[0].Document())
	assert.Equal(t, 1, synth.calls)
}

func TestAsk_SynthesizerFailureFallsBack(t *testing.T) {
	idx := &fakeIndex{hits: []retrieval.Hit{
		retrieval.NewHit("Product Name: Milk", nil, 0.4),
		retrieval.NewHit("Sale: Product: Milk.", nil, 0.6),
	}}
	synth := &fakeSynthesizer{err: errors.New("upstream down")}
	s := newAskFixture(t, idx, synth)

	result, err := s.Ask(context.Background(), "what milk do we stock?", 5)
	require.NoError(t, err)

	assert.Equal(t, "Based on retrieved passages:\n\nProduct Name: Milk\n\nSale: Product: Milk.", result.Answer())
	assert.Len(t, result.Sources(), 2)
}

func TestAsk_NoRelevantHits(t *testing.T) {
	idx := &fakeIndex{hits: []retrieval.Hit{
		retrieval.NewHit("Product Name: Milk", nil, 1.4),
		retrieval.NewHit("irrelevant", nil, math.NaN()),
	}}
	synth := &fakeSynthesizer{answer: "unused"}
	s := newAskFixture(t, idx, synth)

	result, err := s.Ask(context.Background(), "what is the weather on mars?", 5)
	require.NoError(t, err)

	assert.Equal(t, noMatchAnswer, result.Answer())
	assert.Empty(t, result.Sources())
	assert.Zero(t, synth.calls)
}

func TestAsk_ThresholdBoundary(t *testing.T) {
	idx := &fakeIndex{hits: []retrieval.Hit{
		retrieval.NewHit("at threshold", nil, 1.35),
		retrieval.NewHit("just over", nil, 1.3500001),
	}}
	s := newAskFixture(t, idx, &fakeSynthesizer{err: errors.New("off")})

	result, err := s.Ask(context.Background(), "what milk do we stock?", 5)
	require.NoError(t, err)

	require.Len(t, result.Sources(), 1)
	assert.Equal(t, "at threshold", result.Sources()[0].Document())
}

func TestAsk_KRaisedToOne(t *testing.T) {
	idx := &fakeIndex{hits: []retrieval.Hit{retrieval.NewHit("doc", nil, 0.1)}}
	s := newAskFixture(t, idx, &fakeSynthesizer{answer: "a"})

	_, err := s.Ask(context.Background(), "what milk do we stock?", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.lastK)

	_, err = s.Ask(context.Background(), "what milk do we stock?", -3)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.lastK)
}

func TestAsk_PopulatesIndexOnce(t *testing.T) {
	idx := &fakeIndex{hits: []retrieval.Hit{retrieval.NewHit("doc", nil, 0.1)}}
	s := newAskFixture(t, idx, &fakeSynthesizer{answer: "a"})

	ctx := context.Background()
	_, err := s.Ask(ctx, "what milk do we stock?", 5)
	require.NoError(t, err)
	_, err = s.Ask(ctx, "what milk do we stock?", 5)
	require.NoError(t, err)

	assert.Equal(t, 1, idx.builds)
	assert.Len(t, idx.built, 2) // one product, one sale
}

func TestAsk_QueryFailureIsFatal(t *testing.T) {
	idx := &fakeIndex{queryErr: errors.New("index exploded")}
	s := newAskFixture(t, idx, &fakeSynthesizer{answer: "a"})

	_, err := s.Ask(context.Background(), "what milk do we stock?", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query vector index")
}

func TestRebuildIndex(t *testing.T) {
	idx := &fakeIndex{}
	s := newAskFixture(t, idx, &fakeSynthesizer{answer: "a"})

	count, err := s.RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, idx.builds)

	// Rebuild replaces even when already populated.
	count, err = s.RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, idx.builds)
}
