package driven

import (
	"context"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// DocumentFetcher downloads a remote document and detects its format.
// Fetching is fallible and final: the pipeline does not retry.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.RawDocument, error)
}
