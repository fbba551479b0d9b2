package db

import (
	"context"
	"fmt"
	"time"
)

// SyncRecord is one row of the sync history.
type SyncRecord struct {
	ID      int64     `json:"id"`
	Op      string    `json:"op"`
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Handle  string    `json:"handle,omitempty"`
	At      time.Time `json:"at"`
}

// AppendSyncRecord stores the outcome of an upload or download.
func (db *DB) AppendSyncRecord(ctx context.Context, rec SyncRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	success := 0
	if rec.Success {
		success = 1
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sync_history (op, success, message, handle, at) VALUES (?, ?, ?, ?, ?)`,
		rec.Op, success, rec.Message, rec.Handle, rec.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record sync %s: %w", rec.Op, err)
	}
	return nil
}

// RecentSyncRecords returns up to limit records, newest first.
func (db *DB) RecentSyncRecords(ctx context.Context, limit int) ([]SyncRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, op, success, COALESCE(message, ''), COALESCE(handle, ''), at
		 FROM sync_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync history: %w", err)
	}
	defer rows.Close()

	var out []SyncRecord
	for rows.Next() {
		var (
			rec     SyncRecord
			success int
			at      string
		)
		if err := rows.Scan(&rec.ID, &rec.Op, &success, &rec.Message, &rec.Handle, &at); err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}
		rec.Success = success != 0
		rec.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sync time %q: %w", at, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PruneSyncHistory keeps only the newest keep records.
func (db *DB) PruneSyncHistory(ctx context.Context, keep int) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM sync_history WHERE id NOT IN (SELECT id FROM sync_history ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sync history: %w", err)
	}
	return res.RowsAffected()
}
