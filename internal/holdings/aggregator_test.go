package holdings

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networth-dev/networth/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tx(account int64, symbol string, typ model.TxType, qty, price string) model.Transaction {
	return model.Transaction{
		AccountID: account,
		Symbol:    symbol,
		Type:      typ,
		Quantity:  dec(qty),
		Price:     dec(price),
		Currency:  "USD",
		Date:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestCompute_NetQuantity(t *testing.T) {
	hs := Compute([]model.Transaction{
		tx(1, "AAPL", model.TxBuy, "10", "150"),
		tx(1, "AAPL", model.TxTransferIn, "5", "0"),
		tx(1, "AAPL", model.TxSell, "4", "180"),
		tx(1, "AAPL", model.TxTransferOut, "1", "0"),
	})

	require.Len(t, hs, 1)
	assert.True(t, hs[0].Quantity.Equal(dec("10")), "got %s", hs[0].Quantity)
}

func TestCompute_WeightedAverageCost(t *testing.T) {
	hs := Compute([]model.Transaction{
		tx(1, "AAPL", model.TxBuy, "10", "100"),
		tx(1, "AAPL", model.TxBuy, "10", "200"),
	})

	require.Len(t, hs, 1)
	assert.True(t, hs[0].AvgCost.Equal(dec("150")), "got %s", hs[0].AvgCost)
}

func TestCompute_AverageCostOrderInvariant(t *testing.T) {
	a := []model.Transaction{
		tx(1, "AAPL", model.TxBuy, "3", "90"),
		tx(1, "AAPL", model.TxBuy, "7", "110"),
		tx(1, "AAPL", model.TxBuy, "5", "101"),
	}
	b := []model.Transaction{a[2], a[0], a[1]}

	ha := Compute(a)
	hb := Compute(b)
	require.Len(t, ha, 1)
	require.Len(t, hb, 1)
	assert.True(t, ha[0].AvgCost.Equal(hb[0].AvgCost))
}

func TestCompute_DisposalsDoNotChangeAvgCost(t *testing.T) {
	hs := Compute([]model.Transaction{
		tx(1, "AAPL", model.TxBuy, "10", "100"),
		tx(1, "AAPL", model.TxSell, "5", "500"),
	})

	require.Len(t, hs, 1)
	assert.True(t, hs[0].AvgCost.Equal(dec("100")), "got %s", hs[0].AvgCost)
	assert.True(t, hs[0].Quantity.Equal(dec("5")))
}

func TestCompute_IncomeTypesIgnored(t *testing.T) {
	hs := Compute([]model.Transaction{
		tx(1, "AAPL", model.TxBuy, "10", "100"),
		tx(1, "AAPL", model.TxDividend, "25", "1"),
		tx(1, "AAPL", model.TxInterest, "3", "1"),
		tx(1, "AAPL", model.TxFee, "2", "1"),
	})

	require.Len(t, hs, 1)
	assert.True(t, hs[0].Quantity.Equal(dec("10")))
	assert.True(t, hs[0].AvgCost.Equal(dec("100")))
}

func TestCompute_EpsilonFiltersDust(t *testing.T) {
	hs := Compute([]model.Transaction{
		tx(1, "ETH", model.TxBuy, "0.30000001", "2000"),
		tx(1, "ETH", model.TxSell, "0.3", "2000"),
	})
	// 1e-8 leftover is dust, not an active holding.
	assert.Empty(t, hs)
}

func TestCompute_FullySoldExcluded(t *testing.T) {
	hs := Compute([]model.Transaction{
		tx(1, "AAPL", model.TxBuy, "10", "100"),
		tx(1, "AAPL", model.TxSell, "10", "120"),
		tx(1, "MSFT", model.TxBuy, "2", "300"),
	})

	require.Len(t, hs, 1)
	assert.Equal(t, "MSFT", hs[0].Symbol)
}

func TestCompute_PerAccountSeparation(t *testing.T) {
	hs := Compute([]model.Transaction{
		tx(1, "AAPL", model.TxBuy, "10", "100"),
		tx(2, "AAPL", model.TxBuy, "3", "110"),
	})

	require.Len(t, hs, 2)
	assert.Equal(t, int64(1), hs[0].AccountID)
	assert.Equal(t, int64(2), hs[1].AccountID)
	assert.True(t, hs[0].Quantity.Equal(dec("10")))
	assert.True(t, hs[1].Quantity.Equal(dec("3")))
}

func TestCompute_SortedOutput(t *testing.T) {
	hs := Compute([]model.Transaction{
		tx(2, "MSFT", model.TxBuy, "1", "300"),
		tx(1, "MSFT", model.TxBuy, "1", "300"),
		tx(1, "AAPL", model.TxBuy, "1", "100"),
	})

	require.Len(t, hs, 3)
	assert.Equal(t, "AAPL", hs[0].Symbol)
	assert.Equal(t, int64(1), hs[1].AccountID)
	assert.Equal(t, int64(2), hs[2].AccountID)
}
