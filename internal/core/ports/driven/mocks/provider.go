package mocks

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// MockProvider is a scriptable Provider for testing the gateway and the
// query pipeline. It counts calls and can be told to fail with a fixed
// error, once or permanently.
type MockProvider struct {
	mu sync.Mutex

	name         string
	kind         domain.ProviderKind
	capabilities map[domain.Capability]bool
	dimensions   int

	embedErr    error
	generateErr error
	failOnce    bool

	// GenerateFunc overrides the default echo behaviour when set
	GenerateFunc func(question, context string) (string, error)

	EmbedCalls    int
	GenerateCalls int
	EmbedBatches  [][]string
}

// NewMockProvider creates a provider supporting both capabilities.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name: name,
		kind: domain.ProviderKindOpenAI,
		capabilities: map[domain.Capability]bool{
			domain.CapabilityEmbed:    true,
			domain.CapabilityGenerate: true,
		},
		dimensions: 8,
	}
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Kind() domain.ProviderKind { return m.kind }

func (m *MockProvider) Supports(capability domain.Capability) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capabilities[capability]
}

func (m *MockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EmbedCalls++
	m.EmbedBatches = append(m.EmbedBatches, append([]string(nil), texts...))

	if m.embedErr != nil {
		err := m.embedErr
		if m.failOnce {
			m.embedErr = nil
			m.generateErr = nil
			m.failOnce = false
		}
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, m.dimensions)
	}
	return vectors, nil
}

func (m *MockProvider) Generate(_ context.Context, question, docContext string) (string, error) {
	m.mu.Lock()
	generateFunc := m.GenerateFunc
	m.GenerateCalls++
	if m.generateErr != nil {
		err := m.generateErr
		if m.failOnce {
			m.embedErr = nil
			m.generateErr = nil
			m.failOnce = false
		}
		m.mu.Unlock()
		return "", err
	}
	m.mu.Unlock()

	if generateFunc != nil {
		return generateFunc(question, docContext)
	}
	return "Answer from " + m.name + ": " + docContext, nil
}

// Helper methods for testing

// SetKind changes the reported backend family.
func (m *MockProvider) SetKind(kind domain.ProviderKind) {
	m.kind = kind
}

// SetCapabilities restricts the supported capability set.
func (m *MockProvider) SetCapabilities(capabilities ...domain.Capability) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capabilities = make(map[domain.Capability]bool)
	for _, c := range capabilities {
		m.capabilities[c] = true
	}
}

// FailWith makes every call return err until cleared.
func (m *MockProvider) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedErr = err
	m.generateErr = err
	m.failOnce = false
}

// FailOnceWith makes only the next call return err.
func (m *MockProvider) FailOnceWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedErr = err
	m.generateErr = err
	m.failOnce = true
}

// Succeed clears any scripted failure.
func (m *MockProvider) Succeed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedErr = nil
	m.generateErr = nil
	m.failOnce = false
}

// Calls returns the total number of capability invocations.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.EmbedCalls + m.GenerateCalls
}

// deterministicVector generates a stable pseudo-random embedding from text.
func deterministicVector(text string, dimensions int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dimensions)
	for i := range vector {
		seed = seed*1103515245 + 12345
		vector[i] = float32(seed%1000)/1000.0 + 0.001
	}
	return vector
}

// MockLocalProvider wraps MockProvider with a switchable availability flag.
type MockLocalProvider struct {
	*MockProvider
	available bool
}

// NewMockLocalProvider creates an unavailable local provider.
func NewMockLocalProvider(name string) *MockLocalProvider {
	p := NewMockProvider(name)
	p.kind = domain.ProviderKindOllama
	return &MockLocalProvider{MockProvider: p}
}

func (m *MockLocalProvider) Available(_ context.Context) bool {
	return m.available
}

// SetAvailable toggles the availability probe result.
func (m *MockLocalProvider) SetAvailable(available bool) {
	m.available = available
}
