package mocks

import (
	"context"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// MockFetcher is a DocumentFetcher returning a scripted document.
type MockFetcher struct {
	Document *domain.RawDocument
	Err      error

	FetchCalls int
	LastURL    string
}

// NewMockFetcher creates a fetcher serving the given plain-text content.
func NewMockFetcher(content string) *MockFetcher {
	return &MockFetcher{
		Document: &domain.RawDocument{
			URI:      "mock://document",
			MimeType: "text/plain",
			Content:  []byte(content),
		},
	}
}

func (m *MockFetcher) Fetch(_ context.Context, url string) (*domain.RawDocument, error) {
	m.FetchCalls++
	m.LastURL = url
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Document, nil
}
