package valuation

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/model"
)

// SnapshotStore persists daily wealth rows.
type SnapshotStore interface {
	UpsertDailyWealth(w model.DailyWealth) error
}

// Snapshotter persists one dashboard valuation per calendar day.
// Repeated runs on the same day overwrite the existing row; past days
// are never recomputed.
type Snapshotter struct {
	engine *Engine
	store  SnapshotStore
	logger *zap.Logger
}

// NewSnapshotter creates a Snapshotter over an Engine.
func NewSnapshotter(engine *Engine, store SnapshotStore, logger *zap.Logger) *Snapshotter {
	return &Snapshotter{engine: engine, store: store, logger: logger}
}

type snapshotDetails struct {
	Accounts      []AccountSummary `json:"accounts"`
	HoldingsCount int              `json:"holdings_count"`
}

// Run computes today's valuation and upserts it keyed by today's date.
func (s *Snapshotter) Run(ctx context.Context) (model.DailyWealth, error) {
	sum, err := s.engine.Summary(ctx)
	if err != nil {
		return model.DailyWealth{}, fmt.Errorf("snapshot valuation: %w", err)
	}

	details, err := json.Marshal(snapshotDetails{
		Accounts:      sum.Accounts,
		HoldingsCount: sum.HoldingsCount,
	})
	if err != nil {
		return model.DailyWealth{}, fmt.Errorf("snapshot details: %w", err)
	}

	w := model.DailyWealth{
		Date:         model.Day(s.engine.now()),
		TotalWealth:  sum.TotalWealth,
		TotalCost:    sum.TotalCost,
		BaseCurrency: sum.BaseCurrency,
		Details:      string(details),
	}
	if err := s.store.UpsertDailyWealth(w); err != nil {
		return model.DailyWealth{}, fmt.Errorf("snapshot write: %w", err)
	}

	s.logger.Info("daily wealth snapshot written",
		zap.String("date", w.Date.Format(model.DateFormat)),
		zap.String("total_wealth", w.TotalWealth.String()))
	return w, nil
}
