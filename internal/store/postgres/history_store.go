package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kitebird-capital/terminal/internal/domain"
)

// HistoryStore archives every published snapshot so past cycles can be
// queried after the in-memory cache has moved on. It implements the
// refresh.SnapshotSink and handler.HistoryLister interfaces.
type HistoryStore struct {
	pool *pgxpool.Pool
}

// NewHistoryStore creates a HistoryStore backed by the given connection pool.
func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// EnsureSchema creates the snapshot_history table if it does not exist.
func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS snapshot_history (
			cycle_id    UUID PRIMARY KEY,
			captured_at TIMESTAMPTZ NOT NULL,
			snapshot    JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS snapshot_history_captured_at_idx
			ON snapshot_history (captured_at DESC);`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("postgres: ensure snapshot_history schema: %w", err)
	}
	return nil
}

// Name identifies the store as a snapshot sink.
func (s *HistoryStore) Name() string { return "postgres-history" }

// Publish inserts the snapshot as a JSONB row keyed by cycle ID.
func (s *HistoryStore) Publish(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("postgres: marshal snapshot: %w", err)
	}

	const query = `
		INSERT INTO snapshot_history (cycle_id, captured_at, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (cycle_id) DO NOTHING`
	if _, err := s.pool.Exec(ctx, query, snap.CycleID, snap.UpdatedAt, data); err != nil {
		return fmt.Errorf("postgres: insert snapshot %s: %w", snap.CycleID, err)
	}
	return nil
}

// ListRecent returns up to limit archived snapshots, newest first.
func (s *HistoryStore) ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	const query = `
		SELECT cycle_id, captured_at, snapshot
		FROM snapshot_history
		ORDER BY captured_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshot history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.CycleID, &e.CapturedAt, &e.Snapshot); err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: snapshot history rows: %w", err)
	}
	return entries, nil
}
