package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/fx"
	"github.com/networth-dev/networth/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeLedger struct {
	accounts []model.Account
	txs      []model.Transaction
	err      error
}

func (l *fakeLedger) ListAccounts() ([]model.Account, error) {
	return l.accounts, l.err
}

func (l *fakeLedger) ListTransactions(accountID int64) ([]model.Transaction, error) {
	if l.err != nil {
		return nil, l.err
	}
	if accountID == 0 {
		return l.txs, nil
	}
	var out []model.Transaction
	for _, t := range l.txs {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakePrices struct {
	quotes map[string]model.Quote
	series map[string][]model.PricePoint
}

func (p *fakePrices) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	q, ok := p.quotes[symbol]
	if !ok {
		return model.Quote{}, errors.New("no quote available")
	}
	return q, nil
}

func (p *fakePrices) HistoryRange(ctx context.Context, symbol string, start time.Time, interval string) ([]model.PricePoint, error) {
	pts, ok := p.series[symbol]
	if !ok {
		return nil, errors.New("history unavailable")
	}
	return pts, nil
}

type fakeRates map[string]float64

func (r fakeRates) Rate(from, to string) (float64, bool, error) {
	rate, ok := r[from+"/"+to]
	return rate, ok, nil
}

func newTestEngine(ledger *fakeLedger, source *fakePrices, rates fakeRates, base string) *Engine {
	e := NewEngine(ledger, source, fx.NewConverter(rates, zap.NewNop()), base, zap.NewNop())
	e.now = func() time.Time { return day("2024-06-15") }
	return e
}

func TestSummary_ConvertsIntoBaseCurrency(t *testing.T) {
	ledger := &fakeLedger{
		accounts: []model.Account{{ID: 1, Name: "broker", Currency: "USD"}},
		txs: []model.Transaction{
			{AccountID: 1, Symbol: "AAPL", Type: model.TxBuy, Quantity: dec("10"),
				Price: dec("150"), Currency: "USD", Date: day("2024-01-15")},
		},
	}
	source := &fakePrices{quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", Price: dec("200"), Currency: "USD", Name: "Apple Inc."},
	}}

	e := newTestEngine(ledger, source, fakeRates{"USD/EUR": 0.92}, "EUR")
	sum, err := e.Summary(context.Background())
	require.NoError(t, err)

	// 10 shares at $200 is $2000, converted at 0.92.
	assert.True(t, sum.TotalWealth.Equal(dec("1840")), "got %s", sum.TotalWealth)
	assert.True(t, sum.TotalCost.Equal(dec("1380")), "got %s", sum.TotalCost)
	assert.True(t, sum.TotalGain.Equal(dec("460")))
	assert.True(t, sum.TotalGainPercent.Equal(dec("33.33")), "got %s", sum.TotalGainPercent)
	assert.Equal(t, "EUR", sum.BaseCurrency)
	assert.Equal(t, 1, sum.HoldingsCount)

	require.Len(t, sum.Holdings, 1)
	h := sum.Holdings[0]
	assert.Equal(t, "AAPL", h.Symbol)
	assert.Equal(t, "Apple Inc.", h.Name)
	assert.True(t, h.AvgCost.Equal(dec("150")))
	assert.True(t, h.RateFound)
}

func TestSummary_MissingQuoteContributesCostOnly(t *testing.T) {
	ledger := &fakeLedger{
		accounts: []model.Account{{ID: 1, Name: "broker", Currency: "USD"}},
		txs: []model.Transaction{
			{AccountID: 1, Symbol: "AAPL", Type: model.TxBuy, Quantity: dec("10"),
				Price: dec("150"), Currency: "USD", Date: day("2024-01-15")},
			{AccountID: 1, Symbol: "DELISTED", Type: model.TxBuy, Quantity: dec("5"),
				Price: dec("20"), Currency: "USD", Date: day("2024-02-01")},
		},
	}
	source := &fakePrices{quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", Price: dec("200"), Currency: "USD"},
	}}

	e := newTestEngine(ledger, source, fakeRates{}, "USD")
	sum, err := e.Summary(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.TotalWealth.Equal(dec("2000")), "unpriced holding adds no market value")
	assert.True(t, sum.TotalCost.Equal(dec("1600")), "but its cost basis still counts")

	require.Len(t, sum.Holdings, 2)
	var unpriced HoldingValue
	for _, h := range sum.Holdings {
		if h.Symbol == "DELISTED" {
			unpriced = h
		}
	}
	assert.True(t, unpriced.Value.IsZero())
	assert.True(t, unpriced.Cost.Equal(dec("100")))
	assert.True(t, unpriced.Gain.Equal(dec("-100")))
}

func TestSummary_ZeroCostGainPercent(t *testing.T) {
	ledger := &fakeLedger{
		accounts: []model.Account{{ID: 1, Name: "wallet", Currency: "USD"}},
		txs: []model.Transaction{
			{AccountID: 1, Symbol: "BTC", Type: model.TxTransferIn, Quantity: dec("1"),
				Price: decimal.Zero, Currency: "USD", Date: day("2024-01-01")},
		},
	}
	source := &fakePrices{quotes: map[string]model.Quote{
		"BTC": {Symbol: "BTC", Price: dec("45000"), Currency: "USD"},
	}}

	e := newTestEngine(ledger, source, fakeRates{}, "USD")
	sum, err := e.Summary(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.TotalWealth.Equal(dec("45000")))
	assert.True(t, sum.TotalGainPercent.IsZero(), "percent is undefined at zero cost, reported as 0")
}

func TestSummary_MissingRateFlagged(t *testing.T) {
	ledger := &fakeLedger{
		accounts: []model.Account{{ID: 1, Name: "broker", Currency: "GBP"}},
		txs: []model.Transaction{
			{AccountID: 1, Symbol: "VOD.L", Type: model.TxBuy, Quantity: dec("100"),
				Price: dec("0.70"), Currency: "GBP", Date: day("2024-01-15")},
		},
	}
	source := &fakePrices{quotes: map[string]model.Quote{
		"VOD.L": {Symbol: "VOD.L", Price: dec("0.75"), Currency: "GBP"},
	}}

	// No GBP/USD rate configured: amounts pass through at 1:1 and the
	// holding carries rate_found=false so the UI can flag it.
	e := newTestEngine(ledger, source, fakeRates{}, "USD")
	sum, err := e.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, sum.Holdings, 1)
	assert.False(t, sum.Holdings[0].RateFound)
	assert.True(t, sum.Holdings[0].Value.Equal(dec("75")))
}

func TestSummary_PerAccountSubtotals(t *testing.T) {
	ledger := &fakeLedger{
		accounts: []model.Account{
			{ID: 1, Name: "broker", Currency: "USD"},
			{ID: 2, Name: "wallet", Currency: "USD"},
			{ID: 3, Name: "empty", Currency: "EUR"},
		},
		txs: []model.Transaction{
			{AccountID: 1, Symbol: "AAPL", Type: model.TxBuy, Quantity: dec("10"),
				Price: dec("150"), Currency: "USD", Date: day("2024-01-15")},
			{AccountID: 2, Symbol: "BTC", Type: model.TxBuy, Quantity: dec("1"),
				Price: dec("40000"), Currency: "USD", Date: day("2024-02-01")},
		},
	}
	source := &fakePrices{quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", Price: dec("200"), Currency: "USD"},
		"BTC":  {Symbol: "BTC", Price: dec("45000"), Currency: "USD"},
	}}

	e := newTestEngine(ledger, source, fakeRates{}, "USD")
	sum, err := e.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, sum.Accounts, 3, "accounts without holdings still appear")
	assert.True(t, sum.Accounts[0].Value.Equal(dec("2000")))
	assert.True(t, sum.Accounts[1].Value.Equal(dec("45000")))
	assert.True(t, sum.Accounts[2].Value.IsZero())
	assert.True(t, sum.TotalWealth.Equal(dec("47000")))
}

func TestSummary_StaleQuotePropagates(t *testing.T) {
	ledger := &fakeLedger{
		accounts: []model.Account{{ID: 1, Name: "broker", Currency: "USD"}},
		txs: []model.Transaction{
			{AccountID: 1, Symbol: "AAPL", Type: model.TxBuy, Quantity: dec("1"),
				Price: dec("150"), Currency: "USD", Date: day("2024-01-15")},
		},
	}
	source := &fakePrices{quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", Price: dec("195"), Currency: "USD", Stale: true},
	}}

	e := newTestEngine(ledger, source, fakeRates{}, "USD")
	sum, err := e.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, sum.Holdings, 1)
	assert.True(t, sum.Holdings[0].Stale)
}
