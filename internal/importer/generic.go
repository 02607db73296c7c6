package importer

import (
	"fmt"
	"strings"

	"github.com/networth-dev/networth/internal/model"
)

// genericParser handles the tool's own export format and close cousins.
// Column names match case-insensitively across common casings. Rows
// missing a symbol or date, or carrying an unknown type, are rejected
// with a per-row error.
type genericParser struct{}

func (p *genericParser) Format() Format { return FormatGeneric }

func (p *genericParser) Parse(header []string, rows [][]string) ([]model.Transaction, []string) {
	cols := indexColumns(header)

	var txs []model.Transaction
	var errs []string
	for i, rec := range rows {
		rowNum := i + 2

		symbol := strings.ToUpper(cols.field(rec, "symbol", "ticker"))
		if symbol == "" {
			errs = append(errs, fmt.Sprintf("row %d: missing symbol", rowNum))
			continue
		}

		rawDate := cols.field(rec, "date")
		day, ok := parseDay(rawDate)
		if !ok {
			errs = append(errs, fmt.Sprintf("row %d: missing or invalid date %q", rowNum, rawDate))
			continue
		}

		txType := model.TxType(strings.ToLower(cols.field(rec, "type")))
		if !txType.Valid() {
			errs = append(errs, fmt.Sprintf("row %d: unknown transaction type %q", rowNum, txType))
			continue
		}

		quantity, err := parseDecimal(cols.field(rec, "quantity", "qty", "shares"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		price, err := parseDecimal(cols.field(rec, "price"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		fee, err := parseDecimal(cols.field(rec, "fee", "fees", "commission"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		txs = append(txs, model.Transaction{
			Symbol:   symbol,
			Type:     txType,
			Quantity: quantity.Abs(),
			Price:    price.Abs(),
			Fee:      fee.Abs(),
			Currency: strings.ToUpper(cols.field(rec, "currency", "ccy")),
			Date:     day,
			Notes:    cols.field(rec, "notes", "note", "description"),
		})
	}
	return txs, errs
}
