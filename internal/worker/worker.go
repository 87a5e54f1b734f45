package worker

import (
	"context"
	"log/slog"
	"sync"
)

// AnswerFunc produces the answer for one question. Implementations must
// not return errors: a failed question degrades into an answer string
// at the orchestrator boundary.
type AnswerFunc func(ctx context.Context, question string) string

// Pool answers a batch of questions with bounded concurrency. Answers
// come back in question order, one per question, regardless of
// individual outcomes. Questions run independently: one question's
// timeout or failure never cancels its siblings.
type Pool struct {
	concurrency int
	logger      *slog.Logger
}

// PoolConfig holds pool configuration.
type PoolConfig struct {
	// Concurrency is the number of questions in flight at once
	Concurrency int

	Logger *slog.Logger
}

// NewPool creates a question pool.
func NewPool(cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Pool{
		concurrency: concurrency,
		logger:      logger,
	}
}

// AnswerAll fans the questions out over the pool and collects answers
// in order.
func (p *Pool) AnswerAll(ctx context.Context, questions []string, answer AnswerFunc) []string {
	answers := make([]string, len(questions))
	if len(questions) == 0 {
		return answers
	}

	p.logger.Info("answering questions concurrently",
		"questions", len(questions), "concurrency", p.concurrency)

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, question := range questions {
		wg.Add(1)
		go func(slot int, question string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			answers[slot] = answer(ctx, question)
		}(i, question)
	}
	wg.Wait()

	return answers
}
