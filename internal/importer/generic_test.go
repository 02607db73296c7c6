package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networth-dev/networth/internal/model"
)

var genericHeader = []string{"symbol", "type", "quantity", "price", "fee", "currency", "date", "notes"}

func TestGeneric_Parse(t *testing.T) {
	p := &genericParser{}
	txs, errs := p.Parse(genericHeader, [][]string{
		{"AAPL", "buy", "10", "150.00", "1.50", "USD", "2024-01-15", "initial lot"},
		{"BTC", "transfer_in", "0.5", "45000", "", "usd", "2024-02-01", ""},
	})

	require.Empty(t, errs)
	require.Len(t, txs, 2)
	assert.Equal(t, model.TxBuy, txs[0].Type)
	assert.True(t, txs[0].Quantity.Equal(dec("10")))
	assert.True(t, txs[0].Fee.Equal(dec("1.50")))
	assert.Equal(t, "initial lot", txs[0].Notes)
	assert.Equal(t, "USD", txs[1].Currency, "currency is upper-cased")
}

func TestGeneric_RejectsIncompleteRows(t *testing.T) {
	p := &genericParser{}
	txs, errs := p.Parse(genericHeader, [][]string{
		{"", "buy", "10", "150.00", "", "USD", "2024-01-15", ""},
		{"AAPL", "buy", "10", "150.00", "", "USD", "", ""},
		{"AAPL", "short", "10", "150.00", "", "USD", "2024-01-15", ""},
		{"MSFT", "buy", "1", "400.00", "", "USD", "2024-01-16", ""},
	})

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "missing symbol")
	assert.Contains(t, errs[1], "invalid date")
	assert.Contains(t, errs[2], "unknown transaction type")
	require.Len(t, txs, 1)
	assert.Equal(t, "MSFT", txs[0].Symbol)
}

func TestGeneric_AlternateColumnNames(t *testing.T) {
	p := &genericParser{}
	header := []string{"Ticker", "Type", "Shares", "Price", "Commission", "CCY", "Date", "Description"}
	txs, errs := p.Parse(header, [][]string{
		{"voo", "buy", "3", "420.10", "0.99", "eur", "2024-05-02", "index fund"},
	})

	require.Empty(t, errs)
	require.Len(t, txs, 1)
	assert.Equal(t, "VOO", txs[0].Symbol)
	assert.True(t, txs[0].Fee.Equal(dec("0.99")))
	assert.Equal(t, "EUR", txs[0].Currency)
	assert.Equal(t, "index fund", txs[0].Notes)
}

func TestGeneric_NegativeAmountsNormalized(t *testing.T) {
	p := &genericParser{}
	txs, errs := p.Parse(genericHeader, [][]string{
		{"AAPL", "sell", "-5", "-190.00", "", "USD", "2024-03-01", ""},
	})

	require.Empty(t, errs)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Quantity.Equal(dec("5")))
	assert.True(t, txs[0].Price.Equal(dec("190")))
}
