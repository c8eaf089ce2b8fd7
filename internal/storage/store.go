// Package storage persists settlement.State snapshots through the
// database.DB interface, so either the pebble or leveldb backend can back a
// running Engine. It does not participate in command dispatch; cmd/deedd
// loads a snapshot at startup and saves one periodically and on shutdown.
package storage

import (
	"context"
	"fmt"

	"github.com/opendeed/deedd/internal/settlement"
	"github.com/opendeed/deedd/internal/storage/codec"
	"github.com/opendeed/deedd/internal/storage/database"
)

// snapshotKey is the single key the whole State is stored under. Per-field
// keys would let Store do partial writes, but State is small enough (a
// handful of maps keyed by listing/account) that whole-snapshot save/load is
// simpler and matches the coarse commit granularity of Engine.apply.
var snapshotKey = []byte("deedd/settlement/state/v1")

// Store saves and loads settlement.State snapshots against a database.DB.
type Store struct {
	db database.DB
}

// New wraps an opened database.DB (either database/pebble or the leveldb
// backend) for snapshot persistence.
func New(db database.DB) *Store {
	return &Store{db: db}
}

// Save encodes and writes the current state. Intended to be called after a
// batch of commands, or on a timer, not after every single Engine.apply.
func (st *Store) Save(ctx context.Context, s *settlement.State) error {
	buf, err := codec.Encode(s)
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}
	if err := st.db.Write(ctx, snapshotKey, buf); err != nil {
		return fmt.Errorf("storage: write snapshot: %w", err)
	}
	return nil
}

// Load reads the last saved snapshot. It returns (nil, nil) if none exists
// yet, so callers can fall back to settlement.NewState() on first boot.
func (st *Store) Load(ctx context.Context) (*settlement.State, error) {
	buf, err := st.db.Read(ctx, snapshotKey)
	if err == database.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read snapshot: %w", err)
	}
	s := settlement.NewState()
	if err := codec.Decode(buf, s); err != nil {
		return nil, fmt.Errorf("storage: decode snapshot: %w", err)
	}
	return s, nil
}
