package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/networth-dev/networth/internal/model"
)

// UpsertDailyWealth writes one snapshot keyed by its calendar date.
// Repeated writes for the same day overwrite, not accumulate.
func (s *Store) UpsertDailyWealth(w model.DailyWealth) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO daily_wealth (date, total_wealth, total_cost, base_currency, details)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   total_wealth = excluded.total_wealth,
		   total_cost = excluded.total_cost,
		   base_currency = excluded.base_currency,
		   details = excluded.details`,
		w.Date.Format(model.DateFormat),
		w.TotalWealth.String(), w.TotalCost.String(),
		w.BaseCurrency, w.Details,
	)
	if err != nil {
		return fmt.Errorf("upsert daily wealth %s: %w", w.Date.Format(model.DateFormat), err)
	}
	return nil
}

// ListDailyWealth returns snapshots within [start, end] ascending.
// Zero start or end leaves that bound open.
func (s *Store) ListDailyWealth(start, end time.Time) ([]model.DailyWealth, error) {
	query := `SELECT date, total_wealth, total_cost, base_currency, details FROM daily_wealth`
	var conds []string
	var args []any
	if !start.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, start.Format(model.DateFormat))
	}
	if !end.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, end.Format(model.DateFormat))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY date"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list daily wealth: %w", err)
	}
	defer rows.Close()

	var out []model.DailyWealth
	for rows.Next() {
		var w model.DailyWealth
		var date, wealth, cost string
		if err := rows.Scan(&date, &wealth, &cost, &w.BaseCurrency, &w.Details); err != nil {
			return nil, fmt.Errorf("scan daily wealth: %w", err)
		}
		if w.Date, err = time.Parse(model.DateFormat, date); err != nil {
			return nil, fmt.Errorf("daily wealth date %q: %w", date, err)
		}
		if w.TotalWealth, err = decimal.NewFromString(wealth); err != nil {
			return nil, fmt.Errorf("daily wealth total %q: %w", wealth, err)
		}
		if w.TotalCost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("daily wealth cost %q: %w", cost, err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
