// Package holdings derives net positions from the transaction ledger.
package holdings

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/networth-dev/networth/internal/model"
)

// Epsilon is the minimum quantity for a holding to count as active.
// Repeated fractional trades accumulate float rounding in imported
// data, so an exact zero check would leave ghost positions behind.
var Epsilon = decimal.New(1, -8)

type positionKey struct {
	accountID int64
	symbol    string
}

type position struct {
	quantity decimal.Decimal
	acqQty   decimal.Decimal // total acquired quantity
	acqCost  decimal.Decimal // total acquisition notional (quantity * price)
	currency string
}

// Compute replays transactions into one Holding per (account, symbol)
// pair with quantity above Epsilon. Average cost is a single blended
// number over acquiring transactions only; disposals never change it,
// and dividend/interest/fee entries touch neither quantity nor cost.
func Compute(txs []model.Transaction) []model.Holding {
	positions := make(map[positionKey]*position)

	for _, t := range txs {
		key := positionKey{t.AccountID, t.Symbol}
		p := positions[key]
		if p == nil {
			p = &position{}
			positions[key] = p
		}
		switch {
		case t.Type.Acquires():
			p.quantity = p.quantity.Add(t.Quantity)
			p.acqQty = p.acqQty.Add(t.Quantity)
			p.acqCost = p.acqCost.Add(t.Quantity.Mul(t.Price))
			if p.currency == "" {
				p.currency = t.Currency
			}
		case t.Type.Disposes():
			p.quantity = p.quantity.Sub(t.Quantity)
		}
	}

	var out []model.Holding
	for key, p := range positions {
		if !p.quantity.GreaterThan(Epsilon) {
			continue
		}
		h := model.Holding{
			AccountID: key.accountID,
			Symbol:    key.symbol,
			Quantity:  p.quantity,
			Currency:  p.currency,
		}
		if p.acqQty.IsPositive() {
			h.AvgCost = p.acqCost.Div(p.acqQty)
		}
		out = append(out, h)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
