package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
	"github.com/custodia-labs/docquery-core/internal/vectorstore"
)

// Verify interface compliance
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore persists the vector index snapshot as a single file.
// Writes go to a temp file in the same directory followed by a rename,
// so a crash mid-write never leaves a truncated snapshot behind.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a file-backed SnapshotStore at path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Save writes the snapshot atomically.
func (s *SnapshotStore) Save(_ context.Context, snap *domain.Snapshot) error {
	data, err := vectorstore.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. Returns domain.ErrNotFound when the file
// does not exist and domain.ErrSnapshotCorrupt when it does not decode.
func (s *SnapshotStore) Load(_ context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return vectorstore.DecodeSnapshot(data)
}
