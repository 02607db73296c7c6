// Package valuation combines the ledger, the price oracle and the
// currency converter into dashboard summaries, historical wealth
// reconstruction and daily snapshots.
package valuation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/fx"
	"github.com/networth-dev/networth/internal/holdings"
	"github.com/networth-dev/networth/internal/model"
)

// Ledger reads accounts and transactions from the persistent store.
type Ledger interface {
	ListAccounts() ([]model.Account, error)
	// ListTransactions returns entries in replay order (date, id);
	// accountID 0 selects all accounts.
	ListTransactions(accountID int64) ([]model.Transaction, error)
}

// PriceSource resolves current quotes and historical series.
type PriceSource interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
	HistoryRange(ctx context.Context, symbol string, start time.Time, interval string) ([]model.PricePoint, error)
}

// Engine computes portfolio valuations in one base currency.
type Engine struct {
	ledger Ledger
	source PriceSource
	fx     *fx.Converter
	base   string
	logger *zap.Logger

	now func() time.Time
}

// NewEngine creates a valuation Engine. base is the single currency all
// aggregate totals are expressed in.
func NewEngine(ledger Ledger, source PriceSource, converter *fx.Converter, base string, logger *zap.Logger) *Engine {
	return &Engine{
		ledger: ledger,
		source: source,
		fx:     converter,
		base:   base,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// HoldingValue is one priced holding inside a Summary.
type HoldingValue struct {
	AccountID     int64           `json:"account_id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	Price         decimal.Decimal `json:"price"`
	PriceCurrency string          `json:"price_currency,omitempty"`
	Value         decimal.Decimal `json:"value"` // in base currency
	Cost          decimal.Decimal `json:"cost"`  // in base currency
	Gain          decimal.Decimal `json:"gain"`
	ChangePercent float64         `json:"change_percent"`
	Stale         bool            `json:"stale,omitempty"`
	RateFound     bool            `json:"rate_found"`
}

// AccountSummary is the per-account sub-total inside a Summary.
type AccountSummary struct {
	AccountID int64           `json:"account_id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Value     decimal.Decimal `json:"value"`
	Cost      decimal.Decimal `json:"cost"`
	Gain      decimal.Decimal `json:"gain"`
}

// Summary is the instantaneous dashboard valuation.
type Summary struct {
	TotalWealth      decimal.Decimal  `json:"total_wealth"`
	TotalCost        decimal.Decimal  `json:"total_cost"`
	TotalGain        decimal.Decimal  `json:"total_gain"`
	TotalGainPercent decimal.Decimal  `json:"total_gain_percent"`
	BaseCurrency     string           `json:"base_currency"`
	HoldingsCount    int              `json:"holdings_count"`
	Accounts         []AccountSummary `json:"accounts"`
	Holdings         []HoldingValue   `json:"holdings"`
}

// Summary aggregates all active holdings across accounts, prices each
// distinct symbol once, converts into the base currency and sums global
// and per-account totals. A holding whose symbol has no resolvable
// price contributes its cost basis but zero market value.
func (e *Engine) Summary(ctx context.Context) (*Summary, error) {
	accounts, err := e.ledger.ListAccounts()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	txs, err := e.ledger.ListTransactions(0)
	if err != nil {
		return nil, err
	}
	hs := holdings.Compute(txs)

	// One sequential fetch per distinct symbol; failures are isolated.
	quotes := make(map[string]*model.Quote)
	for _, h := range hs {
		if _, done := quotes[h.Symbol]; done {
			continue
		}
		q, err := e.source.Quote(ctx, h.Symbol)
		if err != nil {
			e.logger.Warn("no price for holding", zap.String("symbol", h.Symbol), zap.Error(err))
			quotes[h.Symbol] = nil
			continue
		}
		quotes[h.Symbol] = &q
	}

	sum := &Summary{BaseCurrency: e.base, HoldingsCount: len(hs)}
	perAccount := make(map[int64]*AccountSummary)

	for _, h := range hs {
		hv := HoldingValue{
			AccountID: h.AccountID,
			Symbol:    h.Symbol,
			Quantity:  h.Quantity,
			AvgCost:   h.AvgCost,
			RateFound: true,
		}

		cost, costRateFound, err := e.fx.Convert(h.CostBasis(), h.Currency, e.base)
		if err != nil {
			return nil, err
		}
		hv.Cost = cost
		hv.RateFound = costRateFound

		if q := quotes[h.Symbol]; q != nil {
			raw := h.Quantity.Mul(q.Price)
			value, valueRateFound, err := e.fx.Convert(raw, q.Currency, e.base)
			if err != nil {
				return nil, err
			}
			hv.Price = q.Price
			hv.PriceCurrency = q.Currency
			hv.Name = q.Name
			hv.ChangePercent = q.ChangePercent
			hv.Stale = q.Stale
			hv.Value = value
			hv.RateFound = hv.RateFound && valueRateFound
		}
		hv.Gain = hv.Value.Sub(hv.Cost)

		sum.TotalWealth = sum.TotalWealth.Add(hv.Value)
		sum.TotalCost = sum.TotalCost.Add(hv.Cost)

		acct := perAccount[h.AccountID]
		if acct == nil {
			a := byID[h.AccountID]
			acct = &AccountSummary{AccountID: h.AccountID, Name: a.Name, Currency: a.Currency}
			perAccount[h.AccountID] = acct
		}
		acct.Value = acct.Value.Add(hv.Value)
		acct.Cost = acct.Cost.Add(hv.Cost)
		acct.Gain = acct.Value.Sub(acct.Cost)

		sum.Holdings = append(sum.Holdings, hv)
	}

	sum.TotalGain = sum.TotalWealth.Sub(sum.TotalCost)
	if sum.TotalCost.IsPositive() {
		sum.TotalGainPercent = sum.TotalGain.Div(sum.TotalCost).Mul(decimal.NewFromInt(100)).Round(2)
	}

	// Emit accounts in ledger order, including ones with no holdings.
	for _, a := range accounts {
		if acct, ok := perAccount[a.ID]; ok {
			sum.Accounts = append(sum.Accounts, *acct)
		} else {
			sum.Accounts = append(sum.Accounts, AccountSummary{AccountID: a.ID, Name: a.Name, Currency: a.Currency})
		}
	}

	sum.TotalWealth = sum.TotalWealth.Round(2)
	sum.TotalCost = sum.TotalCost.Round(2)
	sum.TotalGain = sum.TotalGain.Round(2)
	return sum, nil
}
