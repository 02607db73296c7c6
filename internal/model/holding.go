package model

import "github.com/shopspring/decimal"

// Holding is the derived net position for a symbol within an account.
// It is never persisted; it is recomputed from the ledger on demand.
type Holding struct {
	AccountID int64           `json:"account_id"`
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
	AvgCost   decimal.Decimal `json:"avg_cost"` // blended over acquiring transactions only
	Currency  string          `json:"currency"`
}

// CostBasis returns the remaining position valued at blended average cost.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AvgCost)
}
