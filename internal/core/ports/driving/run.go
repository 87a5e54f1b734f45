package driving

import (
	"context"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// RunService executes a full document-question run: fetch, extract, load,
// answer every question. One answer per question, always.
type RunService interface {
	Run(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error)
}
