package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyWealth is one persisted valuation snapshot, keyed by calendar day.
// Recomputing for the same day overwrites the existing row.
type DailyWealth struct {
	Date         time.Time       `json:"date"`
	TotalWealth  decimal.Decimal `json:"total_wealth"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	BaseCurrency string          `json:"base_currency"`
	Details      string          `json:"details"` // JSON per-account breakdown
}

// CurrencyRate is a directed exchange-rate edge. No inverse is derived.
type CurrencyRate struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}
