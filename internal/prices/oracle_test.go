package prices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/model"
)

// fakeProvider returns canned quotes and counts fetches.
type fakeProvider struct {
	quotes  map[string]model.Quote
	history map[string][]model.PricePoint
	fetches int
	fail    bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Quote(_ context.Context, symbol string) (model.Quote, error) {
	f.fetches++
	if f.fail {
		return model.Quote{}, errors.New("provider down")
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return model.Quote{}, errors.New("no such symbol")
	}
	return q, nil
}

func (f *fakeProvider) History(_ context.Context, symbol string, _ time.Time, _ string) ([]model.PricePoint, error) {
	if f.fail {
		return nil, errors.New("provider down")
	}
	pts, ok := f.history[symbol]
	if !ok {
		return nil, errors.New("no history")
	}
	return pts, nil
}

func (f *fakeProvider) Search(_ context.Context, _ string) ([]model.SymbolMatch, error) {
	if f.fail {
		return nil, errors.New("provider down")
	}
	return []model.SymbolMatch{{Symbol: "AAPL", Name: "Apple Inc."}}, nil
}

// memCache is an in-memory CacheStore.
type memCache struct {
	entries map[string]model.Quote
}

func newMemCache() *memCache { return &memCache{entries: make(map[string]model.Quote)} }

func (m *memCache) GetQuote(symbol string) (model.Quote, bool, error) {
	q, ok := m.entries[symbol]
	return q, ok, nil
}

func (m *memCache) UpsertQuote(q model.Quote) error {
	m.entries[q.Symbol] = q
	return nil
}

func quote(symbol string, price float64) model.Quote {
	return model.Quote{Symbol: symbol, Price: decimal.NewFromFloat(price), Currency: "USD"}
}

func TestQuote_FetchesAndCaches(t *testing.T) {
	p := &fakeProvider{quotes: map[string]model.Quote{"AAPL": quote("AAPL", 200)}}
	cache := newMemCache()
	o := NewOracle(p, cache, zap.NewNop())

	q, err := o.Quote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.False(t, q.Stale)
	assert.Equal(t, 1, p.fetches)

	// Cached entry exists now.
	_, ok, err := cache.GetQuote("AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuote_FreshCacheSkipsProvider(t *testing.T) {
	p := &fakeProvider{quotes: map[string]model.Quote{"AAPL": quote("AAPL", 200)}}
	cache := newMemCache()
	fresh := quote("AAPL", 199)
	fresh.UpdatedAt = time.Now().UTC()
	require.NoError(t, cache.UpsertQuote(fresh))

	o := NewOracle(p, cache, zap.NewNop())
	q, err := o.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(199)))
	assert.Equal(t, 0, p.fetches)
}

func TestQuote_StaleFallbackOnFetchFailure(t *testing.T) {
	p := &fakeProvider{fail: true}
	cache := newMemCache()
	old := quote("AAPL", 180)
	old.UpdatedAt = time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, cache.UpsertQuote(old))

	o := NewOracle(p, cache, zap.NewNop())
	q, err := o.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, q.Stale, "fallback beyond the freshness window must be tagged stale")
	assert.True(t, q.Price.Equal(decimal.NewFromInt(180)))
}

func TestQuote_NotFoundWithoutCache(t *testing.T) {
	p := &fakeProvider{fail: true}
	o := NewOracle(p, newMemCache(), zap.NewNop())

	_, err := o.Quote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestQuotes_FailureIsolation(t *testing.T) {
	p := &fakeProvider{quotes: map[string]model.Quote{"AAPL": quote("AAPL", 200)}}
	o := NewOracle(p, newMemCache(), zap.NewNop())

	out := o.Quotes(context.Background(), []string{"AAPL", "NOPE"})
	require.Len(t, out, 2)
	require.NotNil(t, out["AAPL"].Quote)
	assert.Empty(t, out["AAPL"].Error)
	assert.Nil(t, out["NOPE"].Quote)
	assert.NotEmpty(t, out["NOPE"].Error)
}

func TestQuote_EmptySymbol(t *testing.T) {
	o := NewOracle(&fakeProvider{}, newMemCache(), zap.NewNop())
	_, err := o.Quote(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}
