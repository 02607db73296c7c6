package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/networth-dev/networth/internal/model"
)

const trezorDateFormat = "1/2/2006" // M/D/YYYY

// trezorParser handles Trezor Suite wallet exports. RECV becomes
// transfer_in, SENT transfer_out; the unit price is derived from the
// recorded fiat value divided by quantity.
type trezorParser struct{}

func (p *trezorParser) Format() Format { return FormatTrezor }

func (p *trezorParser) Parse(header []string, rows [][]string) ([]model.Transaction, []string) {
	cols := indexColumns(header)

	// The fiat column header embeds its currency, e.g. "Fiat (USD)".
	fiatCol, fiatCurrency := findFiatColumn(header)

	var txs []model.Transaction
	var errs []string
	for i, rec := range rows {
		rowNum := i + 2

		var txType model.TxType
		switch strings.ToUpper(cols.field(rec, "type")) {
		case "RECV":
			txType = model.TxTransferIn
		case "SENT":
			txType = model.TxTransferOut
		default:
			continue // self-transfers, failed txs etc.
		}

		rawDate := cols.field(rec, "date")
		day, err := time.Parse(trezorDateFormat, rawDate)
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: parsing date %q: %v", rowNum, rawDate, err))
			continue
		}

		symbol := strings.ToUpper(cols.field(rec, "amount unit"))
		if symbol == "" {
			errs = append(errs, fmt.Sprintf("row %d: missing amount unit", rowNum))
			continue
		}

		quantity, err := parseDecimal(cols.field(rec, "amount"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		quantity = quantity.Abs()

		fiat, err := parseDecimal(fieldAt(rec, fiatCol))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		fee, err := parseDecimal(cols.field(rec, "fee"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		t := model.Transaction{
			Symbol:   symbol,
			Type:     txType,
			Quantity: quantity,
			Fee:      fee.Abs(),
			Currency: fiatCurrency,
			Date:     model.Day(day),
			Notes:    cols.field(rec, "label"),
		}
		if !quantity.IsZero() {
			t.Price = fiat.Abs().Div(quantity)
		}
		txs = append(txs, t)
	}
	return txs, errs
}

// findFiatColumn locates the "Fiat (XXX)" column and extracts its
// currency code. Defaults to USD when the header carries none.
func findFiatColumn(header []string) (int, string) {
	for i, h := range header {
		n := normalizeHeader(h)
		if !strings.HasPrefix(n, "fiat") {
			continue
		}
		currency := "USD"
		if open := strings.Index(n, "("); open >= 0 {
			if close := strings.Index(n[open:], ")"); close > 1 {
				currency = strings.ToUpper(n[open+1 : open+close])
			}
		}
		return i, currency
	}
	return -1, "USD"
}

func fieldAt(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
