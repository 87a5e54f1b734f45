package mocks

import (
	"context"
	"sync"
	"time"
)

// MockAnswerCache is an in-memory AnswerCache for testing. TTLs are
// recorded but not enforced.
type MockAnswerCache struct {
	mu      sync.Mutex
	answers map[string]string

	GetCalls int
	SetCalls int
	LastTTL  time.Duration
}

// NewMockAnswerCache creates an empty MockAnswerCache.
func NewMockAnswerCache() *MockAnswerCache {
	return &MockAnswerCache{answers: make(map[string]string)}
}

func (m *MockAnswerCache) Get(_ context.Context, documentHash, question string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	answer, ok := m.answers[documentHash+"|"+question]
	return answer, ok, nil
}

func (m *MockAnswerCache) Set(_ context.Context, documentHash, question, answer string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	m.LastTTL = ttl
	m.answers[documentHash+"|"+question] = answer
	return nil
}
