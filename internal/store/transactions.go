package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/networth-dev/networth/internal/model"
)

const txColumns = `id, account_id, symbol, type, quantity, price, fee, currency, date, notes`

// InsertTransaction appends one ledger entry and returns its insertion ID.
func (s *Store) InsertTransaction(t model.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT INTO transactions (account_id, symbol, type, quantity, price, fee, currency, date, notes, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.Symbol, string(t.Type),
		t.Quantity.String(), t.Price.String(), t.Fee.String(),
		t.Currency, t.Date.Format(model.DateFormat), t.Notes, t.Fingerprint(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

// ListTransactions returns ledger entries in replay order (date, id).
// accountID 0 selects all accounts.
func (s *Store) ListTransactions(accountID int64) ([]model.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions ORDER BY date, id`
	args := []any{}
	if accountID != 0 {
		query = `SELECT ` + txColumns + ` FROM transactions WHERE account_id = ? ORDER BY date, id`
		args = append(args, accountID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// GetTransaction returns one ledger entry by ID, or ErrNotFound.
func (s *Store) GetTransaction(id int64) (model.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, ErrNotFound
	}
	return t, err
}

// DeleteTransaction removes one ledger entry.
func (s *Store) DeleteTransaction(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFingerprints returns the dedup fingerprints of all existing
// transactions for one account.
func (s *Store) ListFingerprints(accountID int64) (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT fingerprint FROM transactions WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		set[fp] = struct{}{}
	}
	return set, rows.Err()
}

// ImportBatch inserts transactions inside one sql transaction. A failed
// row (e.g. a fingerprint constraint violation) is recorded as an error
// string and does not abort the remaining rows: sqlite leaves the
// surrounding transaction usable after a per-statement failure, so
// already-inserted rows of the batch still commit.
func (s *Store) ImportBatch(txs []model.Transaction) (int, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, nil, fmt.Errorf("begin import: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO transactions (account_id, symbol, type, quantity, price, fee, currency, date, notes, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, nil, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	imported := 0
	var rowErrs []string
	for i, t := range txs {
		_, execErr := stmt.Exec(
			t.AccountID, t.Symbol, string(t.Type),
			t.Quantity.String(), t.Price.String(), t.Fee.String(),
			t.Currency, t.Date.Format(model.DateFormat), t.Notes, t.Fingerprint(),
		)
		if execErr != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d (%s %s %s): %v",
				i+1, t.Date.Format(model.DateFormat), t.Type, t.Symbol, execErr))
			continue
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, rowErrs, fmt.Errorf("commit import: %w", err)
	}
	return imported, rowErrs, nil
}

func scanTransaction(r rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var typ, qty, price, fee, date string
	if err := r.Scan(&t.ID, &t.AccountID, &t.Symbol, &typ, &qty, &price, &fee, &t.Currency, &date, &t.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, sql.ErrNoRows
		}
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = model.TxType(typ)

	var err error
	if t.Quantity, err = decimal.NewFromString(qty); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d quantity %q: %w", t.ID, qty, err)
	}
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d price %q: %w", t.ID, price, err)
	}
	if t.Fee, err = decimal.NewFromString(fee); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d fee %q: %w", t.ID, fee, err)
	}
	if t.Date, err = time.Parse(model.DateFormat, date); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d date %q: %w", t.ID, date, err)
	}
	return t, nil
}
