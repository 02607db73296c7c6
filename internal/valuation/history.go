package valuation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/holdings"
	"github.com/networth-dev/networth/internal/model"
	"github.com/networth-dev/networth/internal/prices"
)

// WealthPoint is one emitted sample of the reconstructed series.
type WealthPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
	Cost  decimal.Decimal `json:"cost"`
	Gain  decimal.Decimal `json:"gain"`
}

var historyPeriodDays = map[string]int{
	"1w": 7,
	"1m": 30,
	"3m": 90,
	"6m": 180,
	"1y": 365,
	"5y": 1825,
}

// historyStart selects the reconstruction start date: exact for ytd,
// today minus N days otherwise. "max" starts at the first ledger entry.
func historyStart(period string, now time.Time, firstTx time.Time) (time.Time, error) {
	switch period {
	case "ytd":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	case "max", "":
		return firstTx, nil
	}
	days, ok := historyPeriodDays[period]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown period %q", period)
	}
	return model.Day(now.AddDate(0, 0, -days)), nil
}

// History reconstructs the portfolio value time series by replaying the
// ledger against historical price series. accountID 0 means all
// accounts. Transactions are applied through a single forward pointer,
// never re-applied or reversed; prices resolve to the most recent bar
// at or before each emitted date, never forward. Symbols with no
// observed series at all are excluded from valuation, an accepted
// approximation for dates before their first price.
func (e *Engine) History(ctx context.Context, accountID int64, period string) ([]WealthPoint, error) {
	txs, err := e.ledger.ListTransactions(accountID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return []WealthPoint{}, nil
	}

	now := e.now()
	start, err := historyStart(period, now, model.Day(txs[0].Date))
	if err != nil {
		return nil, err
	}

	// Daily bars for short spans, weekly beyond a month.
	interval := prices.IntervalDaily
	if now.Sub(start) > 30*24*time.Hour {
		interval = prices.IntervalWeekly
	}

	series := e.fetchSeries(ctx, txs, start, interval)

	// The emitted grid is the union of every observed price date.
	grid := buildDateGrid(series, start)
	if len(grid) == 0 {
		return []WealthPoint{}, nil
	}

	running := make(map[string]decimal.Decimal)
	cursors := make(map[string]*seriesCursor, len(series))
	for sym, pts := range series {
		cursors[sym] = &seriesCursor{points: pts}
	}

	txPtr := 0
	cumCost := decimal.Zero
	points := make([]WealthPoint, 0, len(grid))

	for _, day := range grid {
		// Advance the replay pointer: apply everything dated on or
		// before this grid day exactly once.
		for txPtr < len(txs) && !model.Day(txs[txPtr].Date).After(day) {
			t := txs[txPtr]
			switch {
			case t.Type.Acquires():
				running[t.Symbol] = running[t.Symbol].Add(t.Quantity)
				cumCost = cumCost.Add(t.Quantity.Mul(t.Price))
			case t.Type.Disposes():
				running[t.Symbol] = running[t.Symbol].Sub(t.Quantity)
			}
			txPtr++
		}

		value := decimal.Zero
		for sym, qty := range running {
			if !qty.GreaterThan(holdings.Epsilon) {
				continue
			}
			cur := cursors[sym]
			if cur == nil {
				continue // no price series observed for this symbol
			}
			price, ok := cur.priceAt(day)
			if !ok {
				continue // series starts after this date
			}
			value = value.Add(qty.Mul(decimal.NewFromFloat(price)))
		}

		v := value.Round(2)
		c := cumCost.Round(2)
		points = append(points, WealthPoint{
			Date:  day.Format(model.DateFormat),
			Value: v,
			Cost:  c,
			Gain:  v.Sub(c),
		})
	}
	return points, nil
}

// fetchSeries loads one historical series per symbol that ever holds a
// positive running balance. Fetches run sequentially; a failed history
// fetch degrades to a flat line at the one cached current price, and a
// symbol with neither is dropped.
func (e *Engine) fetchSeries(ctx context.Context, txs []model.Transaction, start time.Time, interval string) map[string][]model.PricePoint {
	everHeld := everPositiveSymbols(txs)

	series := make(map[string][]model.PricePoint, len(everHeld))
	for _, sym := range everHeld {
		pts, err := e.source.HistoryRange(ctx, sym, start, interval)
		if err == nil && len(pts) > 0 {
			series[sym] = pts
			continue
		}
		e.logger.Warn("history fetch failed, flat-lining cached price",
			zap.String("symbol", sym), zap.Error(err))

		q, qerr := e.source.Quote(ctx, sym)
		if qerr != nil {
			e.logger.Warn("symbol excluded from reconstruction",
				zap.String("symbol", sym), zap.Error(qerr))
			continue
		}
		price, _ := q.Price.Float64()
		series[sym] = []model.PricePoint{{Date: model.Day(start), Close: price}}
	}
	return series
}

// everPositiveSymbols replays the full ledger and returns, sorted, every
// symbol whose running balance is ever positive.
func everPositiveSymbols(txs []model.Transaction) []string {
	balance := make(map[string]decimal.Decimal)
	seen := make(map[string]bool)
	for _, t := range txs {
		switch {
		case t.Type.Acquires():
			balance[t.Symbol] = balance[t.Symbol].Add(t.Quantity)
		case t.Type.Disposes():
			balance[t.Symbol] = balance[t.Symbol].Sub(t.Quantity)
		default:
			continue
		}
		if balance[t.Symbol].IsPositive() {
			seen[t.Symbol] = true
		}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// buildDateGrid returns the ascending union of all observed price dates
// at or after start.
func buildDateGrid(series map[string][]model.PricePoint, start time.Time) []time.Time {
	set := make(map[time.Time]bool)
	for _, pts := range series {
		for _, p := range pts {
			d := model.Day(p.Date)
			if d.Before(model.Day(start)) {
				continue
			}
			set[d] = true
		}
	}
	grid := make([]time.Time, 0, len(set))
	for d := range set {
		grid = append(grid, d)
	}
	sort.Slice(grid, func(i, j int) bool { return grid[i].Before(grid[j]) })
	return grid
}

// seriesCursor resolves prices monotonically: since grid dates only
// move forward, each lookup advances at most to the last bar not after
// the requested day.
type seriesCursor struct {
	points []model.PricePoint
	idx    int
	last   float64
	valid  bool
}

func (c *seriesCursor) priceAt(day time.Time) (float64, bool) {
	for c.idx < len(c.points) && !model.Day(c.points[c.idx].Date).After(day) {
		c.last = c.points[c.idx].Close
		c.valid = true
		c.idx++
	}
	return c.last, c.valid
}
