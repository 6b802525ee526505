// Package storage provides the persistent state store behind change
// detection: one row per trade guid holding the last status we alerted on,
// plus the set of trending symbols from the previous trend cycle.
//
// The store is a sqlite database so state survives restarts and can be shared
// between instances. Status transitions run inside a transaction, so the
// read-then-write decision for a guid either commits whole or not at all.
// Any store error is fatal to the batch being processed; callers retry the
// whole polling cycle later.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Outcome describes what a status transition did for one guid.
type Outcome int

const (
	// OutcomeNew means the guid was unseen and has been recorded.
	OutcomeNew Outcome = iota
	// OutcomeUnchanged means the guid was seen with the same status; nothing written.
	OutcomeUnchanged
	// OutcomeStatusChanged means the guid was seen with a different status and was updated.
	OutcomeStatusChanged
	// OutcomeStale means the guid was unseen but rejected as too old; nothing written.
	OutcomeStale
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_trades (
	guid       TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS seen_trends (
	symbol TEXT PRIMARY KEY
);
`

// Store is a sqlite-backed state store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the store at path. Use ":memory:" for tests.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Exists reports whether a guid has ever been recorded.
func (s *Store) Exists(guid string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM seen_trades WHERE guid = ?`, guid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check trade %s: %w", guid, err)
	}
	return true, nil
}

// Get returns the last recorded status for a guid. The second return is
// false when the guid has never been recorded.
func (s *Store) Get(guid string) (string, bool, error) {
	var status string
	err := s.db.QueryRow(`SELECT status FROM seen_trades WHERE guid = ?`, guid).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get trade %s: %w", guid, err)
	}
	return status, true, nil
}

// Set records a status for a guid unconditionally.
func (s *Store) Set(guid, status string) error {
	_, err := s.db.Exec(`
		INSERT INTO seen_trades (guid, status, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(guid) DO UPDATE SET status = excluded.status, updated_at = CURRENT_TIMESTAMP`,
		guid, status)
	if err != nil {
		return fmt.Errorf("failed to set trade %s: %w", guid, err)
	}
	return nil
}

// Transition applies one change-detection decision for a guid atomically.
// fresh reports whether the record passed the caller's staleness guard; it
// only matters for unseen guids. The read and conditional write share one
// transaction, so two instances cannot both claim the same transition.
func (s *Store) Transition(guid, status string, fresh bool) (Outcome, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prior string
	err = tx.QueryRow(`SELECT status FROM seen_trades WHERE guid = ?`, guid).Scan(&prior)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !fresh {
			return OutcomeStale, nil
		}
		if _, err := tx.Exec(`INSERT INTO seen_trades (guid, status) VALUES (?, ?)`, guid, status); err != nil {
			return OutcomeUnchanged, fmt.Errorf("failed to insert trade %s: %w", guid, err)
		}
		if err := tx.Commit(); err != nil {
			return OutcomeUnchanged, fmt.Errorf("failed to commit trade %s: %w", guid, err)
		}
		return OutcomeNew, nil

	case err != nil:
		return OutcomeUnchanged, fmt.Errorf("failed to read trade %s: %w", guid, err)

	case prior == status:
		return OutcomeUnchanged, nil

	default:
		if _, err := tx.Exec(
			`UPDATE seen_trades SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE guid = ?`,
			status, guid); err != nil {
			return OutcomeUnchanged, fmt.Errorf("failed to update trade %s: %w", guid, err)
		}
		if err := tx.Commit(); err != nil {
			return OutcomeUnchanged, fmt.Errorf("failed to commit trade %s: %w", guid, err)
		}
		return OutcomeStatusChanged, nil
	}
}

// CountTrades returns the number of recorded guids.
func (s *Store) CountTrades() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM seen_trades`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

// SeenTrends returns the trending symbols stored by the previous cycle.
func (s *Store) SeenTrends() ([]string, error) {
	rows, err := s.db.Query(`SELECT symbol FROM seen_trends ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trends: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan trend: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trends: %w", err)
	}
	return symbols, nil
}

// ReplaceTrends swaps the stored trend set for the current one.
func (s *Store) ReplaceTrends(symbols []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM seen_trends`); err != nil {
		return fmt.Errorf("failed to clear trends: %w", err)
	}
	for _, symbol := range symbols {
		if _, err := tx.Exec(`INSERT INTO seen_trends (symbol) VALUES (?)`, symbol); err != nil {
			return fmt.Errorf("failed to store trend %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trends: %w", err)
	}
	return nil
}
