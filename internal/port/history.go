package port

import "github.com/vertextoedge/httpfetch/internal/domain"

// HistoryRepository persists finished downloads for the audit log.
// It stores outcomes only, never transfer offsets: a new download
// always starts from byte zero.
type HistoryRepository interface {
	// Record stores one finished download and fills in the entry ID.
	Record(entry *domain.HistoryEntry) error

	// Recent returns up to limit entries, most recent first.
	Recent(limit int) ([]domain.HistoryEntry, error)

	// Close releases the underlying store.
	Close() error
}
