package importer

import (
	"fmt"
	"strings"

	"github.com/networth-dev/networth/internal/model"
)

// commoditySymbols remaps Revolut's precious-metal currency codes to
// the futures-style market symbols the price provider understands.
var commoditySymbols = map[string]string{
	"XAU": "GC=F", // gold
	"XAG": "SI=F", // silver
	"XPT": "PL=F", // platinum
	"XPD": "PA=F", // palladium
}

// revolutCommoditiesParser handles Revolut commodity exchange exports.
// Only COMPLETED rows are imported; the description text classifies
// direction: exchanging to fiat is a sell, to a commodity a buy.
type revolutCommoditiesParser struct{}

func (p *revolutCommoditiesParser) Format() Format { return FormatRevolutCommodities }

func (p *revolutCommoditiesParser) Parse(header []string, rows [][]string) ([]model.Transaction, []string) {
	cols := indexColumns(header)

	var txs []model.Transaction
	var errs []string
	for i, rec := range rows {
		rowNum := i + 2

		if !strings.EqualFold(cols.field(rec, "state"), "COMPLETED") {
			continue // PENDING and friends never settle into the ledger
		}

		day, ok := parseDay(cols.field(rec, "started date", "completed date"))
		if !ok {
			continue
		}

		code := strings.ToUpper(cols.field(rec, "currency", "product"))
		symbol, isCommodity := commoditySymbols[code]
		if !isCommodity {
			errs = append(errs, fmt.Sprintf("row %d: unknown commodity code %q", rowNum, code))
			continue
		}

		quantity, err := parseDecimal(cols.field(rec, "amount"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		quantity = quantity.Abs()

		fiat, err := parseDecimal(cols.field(rec, "fiat amount", "fiat amount (inc. fees)"))
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
			Quantity: quantity,
			Fee:      fee.Abs(),
			Currency: strings.ToUpper(cols.field(rec, "base currency")),
			Date:     day,
			Notes:    cols.field(rec, "description"),
		}

		if !quantity.IsZero() {
			t.Price = fiat.Abs().Div(quantity)
		}

		// "Exchanged to XAU" acquires the commodity; "Exchanged to EUR"
		// disposes of it back into fiat.
		desc := strings.ToUpper(cols.field(rec, "description"))
		t.Type = model.TxSell
		for c := range commoditySymbols {
			if strings.Contains(desc, c) {
				t.Type = model.TxBuy
				break
			}
		}

		txs = append(txs, t)
	}
	return txs, errs
}
