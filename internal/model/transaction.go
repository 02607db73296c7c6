package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the day-level format used for ledger dates.
const DateFormat = "2006-01-02"

// TxType classifies a ledger transaction.
type TxType string

const (
	TxBuy         TxType = "buy"
	TxSell        TxType = "sell"
	TxTransferIn  TxType = "transfer_in"
	TxTransferOut TxType = "transfer_out"
	TxDividend    TxType = "dividend"
	TxInterest    TxType = "interest"
	TxFee         TxType = "fee"
)

// TxTypes lists all valid transaction types.
var TxTypes = []TxType{TxBuy, TxSell, TxTransferIn, TxTransferOut, TxDividend, TxInterest, TxFee}

// Valid reports whether t is one of the known transaction types.
func (t TxType) Valid() bool {
	switch t {
	case TxBuy, TxSell, TxTransferIn, TxTransferOut, TxDividend, TxInterest, TxFee:
		return true
	}
	return false
}

// Acquires reports whether the type adds to a position.
func (t TxType) Acquires() bool { return t == TxBuy || t == TxTransferIn }

// Disposes reports whether the type removes from a position.
func (t TxType) Disposes() bool { return t == TxSell || t == TxTransferOut }

// Transaction is an immutable ledger entry. Replay order is (Date, ID) ascending.
type Transaction struct {
	ID        int64           `json:"id"`
	AccountID int64           `json:"account_id"`
	Symbol    string          `json:"symbol"` // uppercase ticker
	Type      TxType          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // unit price in Currency
	Fee       decimal.Decimal `json:"fee"`
	Currency  string          `json:"currency"`
	Date      time.Time       `json:"date"` // calendar day, midnight UTC
	Notes     string          `json:"notes"`
}

// Fingerprint returns the deduplication key for the transaction.
// Fee and notes are deliberately excluded: two imports differing only
// in fee or notes are the same economic event.
func (t Transaction) Fingerprint() string {
	return fmt.Sprintf("%d|%s|%s|%s|%s|%s",
		t.AccountID, t.Symbol, t.Type,
		t.Quantity.StringFixed(8), t.Price.StringFixed(4),
		t.Date.Format(DateFormat))
}

// Day truncates a time to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
