package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// MockSnapshotStore is an in-memory SnapshotStore for testing.
type MockSnapshotStore struct {
	mu       sync.Mutex
	snapshot *domain.Snapshot
	saveErr  error
	loadErr  error

	SaveCalls int
	LoadCalls int
}

// NewMockSnapshotStore creates an empty MockSnapshotStore.
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{}
}

func (m *MockSnapshotStore) Save(_ context.Context, snapshot *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshot = snapshot
	return nil
}

func (m *MockSnapshotStore) Load(_ context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	return m.snapshot, nil
}

// Helper methods for testing

func (m *MockSnapshotStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockSnapshotStore) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *MockSnapshotStore) Stored() *domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}
