package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the single persistent store backing the ledger, the price
// cache, the currency-rate table and daily wealth snapshots.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writes; sqlite has a single writer
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL allows dashboard reads while an import is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			currency   TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id  INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			symbol      TEXT NOT NULL,
			type        TEXT NOT NULL,
			quantity    TEXT NOT NULL,
			price       TEXT NOT NULL,
			fee         TEXT NOT NULL DEFAULT '0',
			currency    TEXT NOT NULL,
			date        TEXT NOT NULL,
			notes       TEXT NOT NULL DEFAULT '',
			fingerprint TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_account ON transactions(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_date ON transactions(date)`,
		// Backstop against the concurrent-import race: two imports that
		// both miss the in-memory fingerprint set degrade to per-row
		// constraint errors instead of duplicate rows.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tx_fingerprint ON transactions(fingerprint)`,

		`CREATE TABLE IF NOT EXISTS price_cache (
			symbol         TEXT PRIMARY KEY,
			price          TEXT NOT NULL,
			currency       TEXT NOT NULL,
			name           TEXT NOT NULL DEFAULT '',
			change_percent REAL NOT NULL DEFAULT 0,
			updated_at     INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS currency_rates (
			from_currency TEXT NOT NULL,
			to_currency   TEXT NOT NULL,
			rate          REAL NOT NULL,
			PRIMARY KEY (from_currency, to_currency)
		)`,

		`CREATE TABLE IF NOT EXISTS daily_wealth (
			date          TEXT PRIMARY KEY,
			total_wealth  TEXT NOT NULL,
			total_cost    TEXT NOT NULL,
			base_currency TEXT NOT NULL,
			details       TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
