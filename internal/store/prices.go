package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/networth-dev/networth/internal/model"
)

// GetQuote returns the cached quote for a symbol. The boolean reports
// whether an entry exists; freshness is the caller's concern.
func (s *Store) GetQuote(symbol string) (model.Quote, bool, error) {
	row := s.db.QueryRow(
		`SELECT symbol, price, currency, name, change_percent, updated_at
		 FROM price_cache WHERE symbol = ?`, symbol)

	var q model.Quote
	var price string
	var updated int64
	err := row.Scan(&q.Symbol, &price, &q.Currency, &q.Name, &q.ChangePercent, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Quote{}, false, nil
		}
		return model.Quote{}, false, fmt.Errorf("get quote %s: %w", symbol, err)
	}
	if q.Price, err = decimal.NewFromString(price); err != nil {
		return model.Quote{}, false, fmt.Errorf("cached price %q: %w", price, err)
	}
	q.UpdatedAt = time.Unix(updated, 0).UTC()
	return q, true, nil
}

// UpsertQuote replaces the cache entry for the quote's symbol.
func (s *Store) UpsertQuote(q model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO price_cache (symbol, price, currency, name, change_percent, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET
		   price = excluded.price,
		   currency = excluded.currency,
		   name = excluded.name,
		   change_percent = excluded.change_percent,
		   updated_at = excluded.updated_at`,
		q.Symbol, q.Price.String(), q.Currency, q.Name, q.ChangePercent, q.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert quote %s: %w", q.Symbol, err)
	}
	return nil
}

// Rate looks up the directed exchange rate from -> to. The boolean
// reports whether the rate exists; callers decide the missing-rate policy.
func (s *Store) Rate(from, to string) (float64, bool, error) {
	row := s.db.QueryRow(
		`SELECT rate FROM currency_rates WHERE from_currency = ? AND to_currency = ?`, from, to)

	var rate float64
	if err := row.Scan(&rate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get rate %s->%s: %w", from, to, err)
	}
	return rate, true, nil
}

// UpsertRate inserts or replaces one directed exchange rate.
func (s *Store) UpsertRate(r model.CurrencyRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO currency_rates (from_currency, to_currency, rate) VALUES (?, ?, ?)
		 ON CONFLICT(from_currency, to_currency) DO UPDATE SET rate = excluded.rate`,
		r.From, r.To, r.Rate,
	)
	if err != nil {
		return fmt.Errorf("upsert rate %s->%s: %w", r.From, r.To, err)
	}
	return nil
}
