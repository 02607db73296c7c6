package importer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/model"
)

func TestExportCSV_RoundTrip(t *testing.T) {
	day, _ := time.Parse(model.DateFormat, "2024-01-15")
	txs := []model.Transaction{
		{ID: 1, AccountID: 1, Symbol: "AAPL", Type: model.TxBuy, Quantity: dec("10"),
			Price: dec("150.00"), Fee: dec("1.50"), Currency: "USD", Date: day, Notes: "first lot"},
		{ID: 2, AccountID: 1, Symbol: "BTC", Type: model.TxTransferIn, Quantity: dec("0.5"),
			Price: dec("45000"), Currency: "USD", Date: day},
	}

	var buf bytes.Buffer
	err := ExportCSV(&buf, txs, func(int64) string { return "broker" })
	require.NoError(t, err)

	// An export is itself a valid generic import, and re-importing the
	// same ledger adds nothing once the fingerprints are known.
	store := newFakeImportStore()
	for _, tx := range txs {
		store.fingerprints[tx.Fingerprint()] = struct{}{}
	}
	p := NewPipeline(store, zap.NewNop())

	res, err := p.Run(1, bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)
	assert.Equal(t, string(FormatGeneric), res.Format)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, res.Errors)
}

func TestExportCSV_UnknownAccountName(t *testing.T) {
	var buf bytes.Buffer
	day, _ := time.Parse(model.DateFormat, "2024-01-15")
	err := ExportCSV(&buf, []model.Transaction{
		{ID: 7, AccountID: 99, Symbol: "ETH", Type: model.TxSell, Quantity: dec("1"),
			Price: dec("3000"), Currency: "USD", Date: day},
	}, func(int64) string { return "" })
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, ExportHeader, string(lines[0]))
	assert.Equal(t, "7,,ETH,sell,1,3000,0,USD,2024-01-15,", string(lines[1]))
}
