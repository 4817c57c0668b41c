package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/marketlens/nftdepth/internal/depth"
)

// SnapshotStore archives computed depth snapshots to PostgreSQL. It is
// an optional collaborator: the request path never reads from it.
type SnapshotStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSnapshotStore wraps an existing database handle.
func NewSnapshotStore(db *sqlx.DB, timeout time.Duration) *SnapshotStore {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &SnapshotStore{db: db, timeout: timeout}
}

// Open connects to PostgreSQL and returns a snapshot store.
func Open(dsn string, timeout time.Duration) (*SnapshotStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewSnapshotStore(db, timeout), nil
}

// EnsureSchema creates the archive table if it does not exist.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS market_depth_snapshots (
			id BIGSERIAL PRIMARY KEY,
			collection_id TEXT NOT NULL,
			spread DOUBLE PRECISION NOT NULL,
			spread_percent DOUBLE PRECISION NOT NULL,
			lowest_listing DOUBLE PRECISION NOT NULL,
			highest_offer DOUBLE PRECISION NOT NULL,
			total_listing_depth INTEGER NOT NULL,
			total_offer_depth INTEGER NOT NULL,
			payload JSONB NOT NULL,
			computed_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

// Archive stores one computed snapshot row with the full snapshot as
// a JSON payload alongside the queryable summary columns.
func (s *SnapshotStore) Archive(ctx context.Context, collectionID string, snap depth.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO market_depth_snapshots
		(collection_id, spread, spread_percent, lowest_listing, highest_offer,
		 total_listing_depth, total_offer_depth, payload, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.ExecContext(ctx, query,
		collectionID,
		snap.Spread,
		snap.SpreadPercent,
		snap.LowestListing,
		snap.HighestOffer,
		snap.TotalListingDepth,
		snap.TotalOfferDepth,
		payload,
		snap.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
