package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/networth-dev/networth/internal/model"
)

// CreateAccount inserts a new account and returns it with its assigned ID.
func (s *Store) CreateAccount(name, currency string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO accounts (name, currency, created_at) VALUES (?, ?, ?)`,
		name, currency, now.Format(time.RFC3339),
	)
	if err != nil {
		return model.Account{}, fmt.Errorf("insert account %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Account{}, fmt.Errorf("account id: %w", err)
	}
	return model.Account{ID: id, Name: name, Currency: currency, CreatedAt: now}, nil
}

// GetAccount returns the account with the given ID, or ErrNotFound.
func (s *Store) GetAccount(id int64) (model.Account, error) {
	row := s.db.QueryRow(`SELECT id, name, currency, created_at FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// ListAccounts returns all accounts ordered by name.
func (s *Store) ListAccounts() ([]model.Account, error) {
	rows, err := s.db.Query(`SELECT id, name, currency, created_at FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// DeleteAccount removes an account; its transactions cascade away with it.
func (s *Store) DeleteAccount(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (model.Account, error) {
	var a model.Account
	var created string
	if err := r.Scan(&a.ID, &a.Name, &a.Currency, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("scan account: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		a.CreatedAt = t
	}
	return a, nil
}
