package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kitebird-capital/terminal/internal/domain"
)

const (
	// latestKey holds the most recent snapshot JSON.
	latestKey = "kitebird:snapshot:latest"

	// publishChannel announces each new snapshot to subscribers.
	publishChannel = "kitebird:snapshot"
)

// SnapshotMirror writes every published snapshot to a well-known Redis key
// and announces it on a pub/sub channel. It implements the
// refresh.SnapshotSink interface.
type SnapshotMirror struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotMirror creates a SnapshotMirror. ttl bounds how long a stale
// snapshot survives if the poller dies; zero means no expiry.
func NewSnapshotMirror(c *Client, ttl time.Duration) *SnapshotMirror {
	return &SnapshotMirror{rdb: c.Underlying(), ttl: ttl}
}

// Name identifies the mirror as a snapshot sink.
func (m *SnapshotMirror) Name() string { return "redis-mirror" }

// Publish stores the snapshot under the latest key and notifies subscribers.
func (m *SnapshotMirror) Publish(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}

	if err := m.rdb.Set(ctx, latestKey, data, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", latestKey, err)
	}
	if err := m.rdb.Publish(ctx, publishChannel, data).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", publishChannel, err)
	}
	return nil
}

// Latest reads the mirrored snapshot back, mainly for external tooling and
// tests. Returns domain.ErrNotFound when no snapshot has been mirrored.
func (m *SnapshotMirror) Latest(ctx context.Context) (*domain.Snapshot, error) {
	data, err := m.rdb.Get(ctx, latestKey).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", latestKey, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("redis: unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
