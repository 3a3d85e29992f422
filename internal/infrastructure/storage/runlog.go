package storage

import (
	"fmt"
	"time"
)

// RunLogEntry is one tenant's outcome within a reconciliation batch.
type RunLogEntry struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id"`
	TenantID     string    `json:"tenant_id"`
	StartedAt    time.Time `json:"started_at"`
	Posted       int       `json:"posted"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// RunLogger records reconciliation batch outcomes for later inspection.
type RunLogger interface {
	SaveRunEntry(entry *RunLogEntry) error
	ListRunEntries(limit int) ([]RunLogEntry, error)
}

// Compile-time check that Storage implements RunLogger
var _ RunLogger = (*Storage)(nil)

// SaveRunEntry appends one tenant outcome to the run log
func (s *Storage) SaveRunEntry(entry *RunLogEntry) error {
	query := `
	INSERT INTO run_log (run_id, tenant_id, started_at, posted, skipped, failed, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	startedAt := entry.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.db.Exec(query,
		entry.RunID,
		entry.TenantID,
		startedAt,
		entry.Posted,
		entry.Skipped,
		entry.Failed,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save run log entry: %w", err)
	}
	return nil
}

// ListRunEntries returns the most recent run log entries
func (s *Storage) ListRunEntries(limit int) ([]RunLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, run_id, tenant_id, started_at, posted, skipped, failed, COALESCE(error_message, '')
	FROM run_log ORDER BY id DESC LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list run log entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []RunLogEntry
	for rows.Next() {
		var e RunLogEntry
		if err := rows.Scan(&e.ID, &e.RunID, &e.TenantID, &e.StartedAt, &e.Posted, &e.Skipped, &e.Failed, &e.ErrorMessage); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
