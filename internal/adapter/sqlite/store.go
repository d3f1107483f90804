package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vertextoedge/httpfetch/internal/domain"
	"github.com/vertextoedge/httpfetch/internal/port"
)

// Store implements port.HistoryRepository using SQLite. It keeps an
// audit log of finished downloads; it never stores transfer offsets.
type Store struct {
	db *sql.DB
}

// Ensure Store implements port.HistoryRepository
var _ port.HistoryRepository = (*Store)(nil)

// Open opens a connection to the SQLite database, creating it and its
// parent directory as needed.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrate creates or updates the database schema
func (s *Store) migrate() error {
	schema := `CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		dest_path TEXT NOT NULL,
		outcome TEXT NOT NULL,
		bytes_written INTEGER NOT NULL DEFAULT 0,
		attempts INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	)`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_downloads_finished_at ON downloads(finished_at)`)
	return err
}

// Record stores one finished download and fills in the entry ID
func (s *Store) Record(entry *domain.HistoryEntry) error {
	res, err := s.db.Exec(
		`INSERT INTO downloads (url, dest_path, outcome, bytes_written, attempts, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.URL,
		entry.DestPath,
		entry.Outcome,
		entry.BytesWritten,
		entry.Attempts,
		entry.Error,
		entry.StartedAt,
		entry.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}
	entry.ID = id

	return nil
}

// Recent returns up to limit entries, most recent first
func (s *Store) Recent(limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, url, dest_path, outcome, bytes_written, attempts, error, started_at, finished_at
		 FROM downloads ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.URL, &e.DestPath, &e.Outcome,
			&e.BytesWritten, &e.Attempts, &e.Error,
			&e.StartedAt, &e.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan download row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
