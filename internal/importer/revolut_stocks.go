package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/networth-dev/networth/internal/model"
)

// revolutStocksParser handles Revolut stock trading exports.
//
// BUY/SELL market orders map to buy/sell, DIVIDEND becomes a dividend
// record where quantity carries the cash amount at unit price 1, and
// STOCK SPLIT arrives as transfer_in (free shares). Cash movements
// (CASH TOP-UP, CASH WITHDRAWAL) are not ledger events and are skipped.
type revolutStocksParser struct{}

func (p *revolutStocksParser) Format() Format { return FormatRevolutStocks }

func (p *revolutStocksParser) Parse(header []string, rows [][]string) ([]model.Transaction, []string) {
	cols := indexColumns(header)

	var txs []model.Transaction
	var errs []string
	for i, rec := range rows {
		rowNum := i + 2 // header is row 1

		rawType := strings.ToUpper(cols.field(rec, "type"))
		switch {
		case rawType == "":
			continue
		case strings.HasPrefix(rawType, "CASH TOP-UP"), strings.HasPrefix(rawType, "CASH WITHDRAWAL"):
			continue // account funding, not a position change
		}

		day, ok := parseDay(cols.field(rec, "date"))
		if !ok {
			continue // rows without a resolvable date are skipped
		}

		symbol := strings.ToUpper(cols.field(rec, "ticker"))
		currency := strings.ToUpper(cols.field(rec, "currency"))

		quantity, err := parseDecimal(cols.field(rec, "quantity"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		price, err := parseDecimal(cols.field(rec, "price per share"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		total, err := parseDecimal(cols.field(rec, "total amount"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		t := model.Transaction{
			Symbol:   symbol,
			Quantity: quantity,
			Price:    price,
			Currency: currency,
			Date:     day,
		}

		switch {
		case strings.HasPrefix(rawType, "BUY"):
			t.Type = model.TxBuy
		case strings.HasPrefix(rawType, "SELL"):
			t.Type = model.TxSell
		case strings.HasPrefix(rawType, "DIVIDEND"):
			// The payout is cash: quantity carries the amount, price 1.
			t.Type = model.TxDividend
			t.Quantity = total.Abs()
			t.Price = decimal.NewFromInt(1)
		case strings.HasPrefix(rawType, "STOCK SPLIT"):
			t.Type = model.TxTransferIn
			t.Price = decimal.Zero
		default:
			continue // unrecognized order type
		}

		if t.Symbol == "" {
			errs = append(errs, fmt.Sprintf("row %d: missing ticker", rowNum))
			continue
		}
		txs = append(txs, t)
	}
	return txs, errs
}
