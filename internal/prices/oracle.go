package prices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/model"
)

// ErrQuoteNotFound is returned when a symbol has neither a fetchable
// price nor any cached entry to fall back to.
var ErrQuoteNotFound = errors.New("prices: quote not found")

// DefaultFreshness is the cache window within which a quote is served
// without hitting the provider.
const DefaultFreshness = 5 * time.Minute

// DefaultFetchTimeout bounds each external provider call so one slow
// symbol cannot stall a whole dashboard response.
const DefaultFetchTimeout = 10 * time.Second

// CacheStore persists quotes across requests.
type CacheStore interface {
	GetQuote(symbol string) (model.Quote, bool, error)
	UpsertQuote(q model.Quote) error
}

// Oracle serves quotes, history and search over a Provider, with a
// time-bounded persistent cache and stale fallback.
type Oracle struct {
	provider  Provider
	cache     CacheStore
	freshness time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewOracle creates an Oracle. The provider is an explicit dependency;
// its lifecycle belongs to the caller.
func NewOracle(provider Provider, cache CacheStore, logger *zap.Logger) *Oracle {
	return &Oracle{
		provider:  provider,
		cache:     cache,
		freshness: DefaultFreshness,
		timeout:   DefaultFetchTimeout,
		logger:    logger,
	}
}

// SetFetchTimeout overrides the per-call provider deadline.
func (o *Oracle) SetFetchTimeout(d time.Duration) {
	if d > 0 {
		o.timeout = d
	}
}

// Quote returns a price for the symbol: a fresh cache entry if one
// exists, otherwise a provider fetch (cached on success). On fetch
// failure any cached entry is served tagged stale; with no cache at
// all the lookup fails with ErrQuoteNotFound.
func (o *Oracle) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return model.Quote{}, ErrQuoteNotFound
	}

	cached, haveCached, err := o.cache.GetQuote(symbol)
	if err != nil {
		return model.Quote{}, err
	}
	if haveCached && time.Since(cached.UpdatedAt) < o.freshness {
		return cached, nil
	}

	fctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	q, fetchErr := o.provider.Quote(fctx, symbol)
	if fetchErr == nil {
		q.Symbol = symbol
		q.UpdatedAt = time.Now().UTC()
		if err := o.cache.UpsertQuote(q); err != nil {
			o.logger.Warn("quote cache write failed", zap.String("symbol", symbol), zap.Error(err))
		}
		return q, nil
	}

	if haveCached {
		// Last resort: serve whatever we have, however old.
		o.logger.Warn("price fetch failed, serving stale cache",
			zap.String("symbol", symbol), zap.Error(fetchErr))
		cached.Stale = true
		return cached, nil
	}

	return model.Quote{}, fmt.Errorf("%w: %s: %v", ErrQuoteNotFound, symbol, fetchErr)
}

// BatchQuote is one entry of a batch lookup: either a quote or an error
// string, never both.
type BatchQuote struct {
	Quote *model.Quote `json:"quote,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Quotes resolves a batch of symbols sequentially. Each symbol's lookup
// is isolated: one failure never aborts the batch.
func (o *Oracle) Quotes(ctx context.Context, symbols []string) map[string]BatchQuote {
	out := make(map[string]BatchQuote, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		q, err := o.Quote(ctx, symbol)
		if err != nil {
			out[symbol] = BatchQuote{Error: err.Error()}
			continue
		}
		out[symbol] = BatchQuote{Quote: &q}
	}
	return out
}

// History resolves a named period and fetches the price series.
func (o *Oracle) History(ctx context.Context, symbol, period string) ([]model.PricePoint, error) {
	start, interval, err := ResolvePeriod(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return o.HistoryRange(ctx, symbol, start, interval)
}

// HistoryRange fetches the price series from start at the given interval.
func (o *Oracle) HistoryRange(ctx context.Context, symbol string, start time.Time, interval string) ([]model.PricePoint, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	fctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	points, err := o.provider.History(fctx, symbol, start, interval)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}
	return points, nil
}

// Search queries the provider for candidate symbols.
func (o *Oracle) Search(ctx context.Context, query string) ([]model.SymbolMatch, error) {
	fctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	matches, err := o.provider.Search(fctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return matches, nil
}
