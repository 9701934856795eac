package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkhub/internal/app/storage"
)

// DirectorySnapshot is the row name the user directory is stored under.
const DirectorySnapshot = "users"

const (
	selectSnapshotSQL = `SELECT payload FROM directory_snapshots WHERE name = $1`

	upsertSnapshotSQL = `
INSERT INTO directory_snapshots (name, payload)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE
SET payload = EXCLUDED.payload,
    revision = directory_snapshots.revision + 1,
    updated_at = now()`
)

// BlobStore persists the directory document as a single JSONB row. The upsert is one
// statement, so it is atomic without an explicit transaction.
type BlobStore struct {
	pool *pgxpool.Pool
	name string
}

// NewBlobStore returns a BlobStore writing the row called name.
func NewBlobStore(pool *pgxpool.Pool, name string) *BlobStore {
	return &BlobStore{pool: pool, name: name}
}

var _ storage.BlobStore = (*BlobStore)(nil)

// Name implements storage.BlobStore.
func (s *BlobStore) Name() string {
	return "postgres:directory_snapshots/" + s.name
}

// Load implements storage.BlobStore.
func (s *BlobStore) Load(ctx context.Context) ([]byte, error) {
	var payload []byte

	err := s.pool.QueryRow(ctx, selectSnapshotSQL, s.name).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to load directory snapshot: %w", err)
	}

	return payload, nil
}

// Save implements storage.BlobStore.
func (s *BlobStore) Save(ctx context.Context, data []byte) error {
	if _, err := s.pool.Exec(ctx, upsertSnapshotSQL, s.name, data); err != nil {
		return fmt.Errorf("failed to save directory snapshot: %w", err)
	}

	return nil
}
