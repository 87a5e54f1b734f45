package driven

import (
	"context"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// SnapshotStore persists the last loaded document's index and chunk list
// under a fixed key derived from configuration. It is an
// overwrite-cache-of-last-document, not a multi-document cache.
type SnapshotStore interface {
	// Save overwrites the stored snapshot.
	Save(ctx context.Context, snapshot *domain.Snapshot) error

	// Load restores the stored snapshot.
	// Returns domain.ErrNotFound when nothing has been saved yet and
	// domain.ErrSnapshotCorrupt when the stored bytes do not decode;
	// callers treat both as empty-state, never as fatal.
	Load(ctx context.Context) (*domain.Snapshot, error)
}
