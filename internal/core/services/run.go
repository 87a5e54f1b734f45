package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driving"
	"github.com/custodia-labs/docquery-core/internal/worker"
)

// Ensure runService implements RunService
var _ driving.RunService = (*runService)(nil)

// RunConfig tunes the document-question pipeline.
type RunConfig struct {
	// Concurrency bounds parallel question processing
	Concurrency int

	// CacheTTL is how long answers stay cached (0 disables caching even
	// when a cache backend is wired)
	CacheTTL time.Duration
}

// runService executes a full run: fetch the document, extract its text,
// load it into the vector store, then answer every question. Document
// loading completes before any question runs - a hard ordering barrier,
// after which the store is read-only for the whole batch.
type runService struct {
	fetcher     driven.DocumentFetcher
	normalisers driven.NormaliserRegistry
	query       driving.QueryService
	cache       driven.AnswerCache // may be nil
	cfg         RunConfig
	logger      *slog.Logger
}

// NewRunService creates the run pipeline.
func NewRunService(
	fetcher driven.DocumentFetcher,
	normalisers driven.NormaliserRegistry,
	query driving.QueryService,
	cache driven.AnswerCache,
	cfg RunConfig,
	logger *slog.Logger,
) driving.RunService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	return &runService{
		fetcher:     fetcher,
		normalisers: normalisers,
		query:       query,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run processes one document and its questions. Extraction failure is
// fatal for the run; per-question failures degrade into answers.
func (s *runService) Run(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Run ID ties together the log lines of one batch
	logger := s.logger.With("run_id", uuid.NewString())
	logger.Info("processing run", "questions", len(req.Questions))

	text, err := s.extract(ctx, req.Documents)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum([]byte(text))
	documentHash := hex.EncodeToString(sum[:])

	if err := s.query.LoadDocument(ctx, text, documentHash); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	pool := worker.NewPool(worker.PoolConfig{
		Concurrency: s.cfg.Concurrency,
		Logger:      logger,
	})
	answers := pool.AnswerAll(ctx, req.Questions, func(ctx context.Context, question string) string {
		return s.answerOne(ctx, documentHash, question, text)
	})

	logger.Info("run complete", "questions", len(req.Questions), "took", time.Since(start))
	return &domain.RunResult{
		DocumentHash: documentHash,
		Answers:      answers,
		Took:         time.Since(start),
	}, nil
}

// answerOne consults the answer cache around the query orchestrator.
// Cache problems are logged and ignored: caching is an optimisation,
// never a failure source.
func (s *runService) answerOne(ctx context.Context, documentHash, question, text string) string {
	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if answer, ok, err := s.cache.Get(ctx, documentHash, question); err == nil && ok {
			s.logger.Info("answer cache hit", "question", truncate(question, 60))
			return answer
		} else if err != nil {
			s.logger.Warn("answer cache get failed", "error", err)
		}
	}

	answer := s.query.AnswerQuestion(ctx, question, text)

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, documentHash, question, answer, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("answer cache set failed", "error", err)
		}
	}
	return answer
}

// extract downloads the document and converts it to plain text through
// the normaliser registry. No internal retries: fetching is final.
func (s *runService) extract(ctx context.Context, url string) (string, error) {
	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch document: %w", err)
	}

	normaliser := s.normalisers.Get(raw.MimeType)
	if normaliser == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, raw.MimeType)
	}

	text, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	s.logger.Info("extracted document text", "chars", len(text), "mime_type", raw.MimeType)
	return text, nil
}
