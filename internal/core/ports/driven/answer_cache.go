package driven

import (
	"context"
	"time"
)

// AnswerCache caches generated answers keyed by document hash + question.
// Optional: the pipeline runs without one when no backend is configured.
type AnswerCache interface {
	// Get returns the cached answer and whether it was present.
	Get(ctx context.Context, documentHash, question string) (string, bool, error)

	// Set stores an answer with the given TTL.
	Set(ctx context.Context, documentHash, question, answer string, ttl time.Duration) error
}
