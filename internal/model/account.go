package model

import "time"

// Account owns a currency denomination and a set of transactions.
// Deleting an account cascades to its transactions.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}
