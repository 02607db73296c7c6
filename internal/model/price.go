package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a cached market price for a symbol. A quote older than the
// oracle's freshness window is only served as a stale fallback.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Name          string          `json:"name,omitempty"`
	ChangePercent float64         `json:"change_percent"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Stale         bool            `json:"stale,omitempty"`
}

// PricePoint is one bar of a historical price series.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SymbolMatch is one candidate from a symbol search.
type SymbolMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}
