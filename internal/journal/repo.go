package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Entry is one row of the operations table.
type Entry struct {
	ID        int64
	RunID     string
	Op        string
	Outcome   string
	ModUUID   string
	ModName   string
	Detail    string
	Error     string
	CreatedAt time.Time
}

// Journal is what the service layer records into. Nop discards
// everything when the journal is disabled.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	SetChecksum(ctx context.Context, path, checksum string) error
	Checksum(ctx context.Context, path string) (string, error)
	Close() error
}

var _ Journal = (*DB)(nil)

// Record appends e. A zero CreatedAt is set to now.
func (db *DB) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO operations (run_id, op, outcome, mod_uuid, mod_name, detail, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.Op, e.Outcome, e.ModUUID, e.ModName, e.Detail, e.Error, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, run_id, op, outcome, mod_uuid, mod_name, detail, error, created_at
		FROM operations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RunID, &e.Op, &e.Outcome, &e.ModUUID, &e.ModName, &e.Detail, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetChecksum stores the fingerprint a store file had after modsync last
// wrote it.
func (db *DB) SetChecksum(ctx context.Context, path, checksum string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO store_state (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, checksum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("journal: set checksum: %w", err)
	}
	return nil
}

// Checksum returns the stored fingerprint for path, or "" if none.
func (db *DB) Checksum(ctx context.Context, path string) (string, error) {
	var cs string
	err := db.conn.QueryRowContext(ctx, `SELECT checksum FROM store_state WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("journal: checksum: %w", err)
	}
	return cs, nil
}

// Nop is a Journal that stores nothing.
type Nop struct{}

var _ Journal = Nop{}

func (Nop) Record(context.Context, Entry) error               { return nil }
func (Nop) Recent(context.Context, int) ([]Entry, error)      { return nil, nil }
func (Nop) SetChecksum(context.Context, string, string) error { return nil }
func (Nop) Checksum(context.Context, string) (string, error)  { return "", nil }
func (Nop) Close() error                                      { return nil }
