package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
	"github.com/custodia-labs/docquery-core/internal/vectorstore"
)

// Verify interface compliance
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore persists the vector index snapshot in Postgres. The
// service indexes one document at a time, so the table holds a single
// row replaced on every save. Chosen over the file store when
// DATABASE_URL is set, for deployments without a persistent disk.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore creates a Postgres-backed SnapshotStore.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save replaces the stored snapshot.
func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	data, err := vectorstore.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	query := `
		INSERT INTO index_snapshots (id, document_hash, data, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE SET
			document_hash = EXCLUDED.document_hash,
			data = EXCLUDED.data,
			updated_at = now()`

	if _, err := s.db.ExecContext(ctx, query, snap.DocumentHash, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the stored snapshot. Returns domain.ErrNotFound when
// nothing has been saved and domain.ErrSnapshotCorrupt when the stored
// bytes do not decode.
func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	var data []byte
	query := `SELECT data FROM index_snapshots WHERE id = 1`

	err := s.db.QueryRowContext(ctx, query).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return vectorstore.DecodeSnapshot(data)
}
