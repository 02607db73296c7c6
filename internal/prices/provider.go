package prices

import (
	"context"
	"time"

	"github.com/networth-dev/networth/internal/model"
)

// Provider fetches market data from an external source.
type Provider interface {
	// Quote returns the latest price for a symbol in the quote's own currency.
	Quote(ctx context.Context, symbol string) (model.Quote, error)
	// History returns close-price bars from start to now at the given interval.
	History(ctx context.Context, symbol string, start time.Time, interval string) ([]model.PricePoint, error)
	// Search returns candidate symbol matches for a free-text query.
	Search(ctx context.Context, query string) ([]model.SymbolMatch, error)
	Name() string
}
