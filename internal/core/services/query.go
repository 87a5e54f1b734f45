package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driving"
	"github.com/custodia-labs/docquery-core/internal/postprocessors"
)

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// VectorStore is the retrieval surface the orchestrator needs.
type VectorStore interface {
	Load(ctx context.Context, chunks []*domain.Chunk, documentHash string) error
	RelevantContext(ctx context.Context, query string, maxChunks int) (string, error)
	Size() int
}

// Generator is the generation slice of the gateway.
type Generator interface {
	Generate(ctx context.Context, question, docContext string) (string, error)
}

// QueryConfig tunes the orchestrator.
type QueryConfig struct {
	// TopK is how many chunks feed the context window
	TopK int

	// MaxContextChars bounds the assembled context
	MaxContextChars int
}

// DefaultQueryConfig returns the stock tuning.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:            2,
		MaxContextChars: 2000,
	}
}

// queryService is the per-question pipeline: preprocess the question,
// retrieve context, generate, post-process. A question's failure is
// always converted to a degraded answer so a batch never aborts.
type queryService struct {
	store    VectorStore
	gateway  Generator
	fallback driven.Provider // Direct safety net after gateway exhaustion, may be nil
	expander driven.QueryExpander
	chunks   *postprocessors.Pipeline
	cfg      QueryConfig
	logger   *slog.Logger
}

// NewQueryService creates the query orchestrator.
// fallback is the single hardcoded provider tried directly when the
// gateway exhausts every candidate; pass nil to disable.
func NewQueryService(
	store VectorStore,
	gateway Generator,
	fallback driven.Provider,
	expander driven.QueryExpander,
	chunks *postprocessors.Pipeline,
	cfg QueryConfig,
	logger *slog.Logger,
) driving.QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 2
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 2000
	}
	return &queryService{
		store:    store,
		gateway:  gateway,
		fallback: fallback,
		expander: expander,
		chunks:   chunks,
		cfg:      cfg,
		logger:   logger,
	}
}

// LoadDocument chunks the extracted text and commits it to the vector
// store. The store's hash check makes repeat loads of the same content
// free.
func (s *queryService) LoadDocument(ctx context.Context, text string, contentHash string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyDocument
	}

	chunks := s.chunks.Process(text)
	if len(chunks) == 0 {
		return domain.ErrEmptyDocument
	}

	if err := s.store.Load(ctx, chunks, contentHash); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	return nil
}

// AnswerQuestion runs the full per-question pipeline. Errors never
// escape: they degrade into an apologetic answer string.
func (s *queryService) AnswerQuestion(ctx context.Context, question string, fallbackText string) string {
	s.logger.Info("processing question", "question", truncate(question, 100))

	answer, err := s.process(ctx, question, fallbackText)
	if err != nil {
		s.logger.Error("question processing failed", "error", err)
		return fmt.Sprintf("I apologize, but I encountered an error while processing your query: %v", err)
	}

	s.logger.Info("generated answer", "chars", len(answer))
	return answer
}

func (s *queryService) process(ctx context.Context, question, fallbackText string) (string, error) {
	processed := s.preprocess(question)

	docContext, err := s.store.RelevantContext(ctx, processed, s.cfg.TopK)
	if err != nil {
		s.logger.Warn("vector retrieval failed", "error", err)
		docContext = ""
	}

	// Empty index or failed retrieval: fall back to lexical scoring over
	// the raw document text.
	if docContext == "" && fallbackText != "" {
		docContext = s.lexicalContext(question, fallbackText)
	}
	if len(docContext) > s.cfg.MaxContextChars {
		docContext = docContext[:s.cfg.MaxContextChars]
	}

	answer, err := s.generate(ctx, question, docContext)
	if err != nil {
		return "", err
	}
	return postProcess(answer), nil
}

// generate asks the gateway first and, when every candidate is
// exhausted, makes one direct attempt against the hardcoded fallback
// provider with the full instructional template.
func (s *queryService) generate(ctx context.Context, question, docContext string) (string, error) {
	answer, err := s.gateway.Generate(ctx, question, docContext)
	if err == nil {
		return answer, nil
	}
	s.logger.Warn("gateway generation failed", "error", err)

	if s.fallback == nil {
		return "", err
	}

	s.logger.Info("falling back to direct provider", "provider", s.fallback.Name())
	answer, directErr := s.fallback.Generate(ctx, buildPrompt(question, docContext), "")
	if directErr != nil {
		s.logger.Error("direct fallback also failed", "error", directErr)
		return "I apologize, but I'm unable to generate an answer at this time due to API limitations. Please try again in a few minutes.", nil
	}
	return answer, nil
}

var (
	stopWordPattern   = regexp.MustCompile(`(?i)\b(what|how|when|where|why|does|is|are|can|will|would)\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	answerPrefix      = regexp.MustCompile(`(?i)^(Answer:|Response:)\s*`)
	newlinePattern    = regexp.MustCompile(`\n+`)
)

// preprocess strips interrogative stop-words and appends vocabulary
// hits so the retrieval query carries the load-bearing terms.
func (s *queryService) preprocess(question string) string {
	query := stopWordPattern.ReplaceAllString(question, "")
	query = strings.TrimSpace(whitespacePattern.ReplaceAllString(query, " "))

	if s.expander != nil {
		if hits := s.expander.Expand(question); len(hits) > 0 {
			query = query + " " + strings.Join(hits, " ")
		}
	}
	return query
}

// lexicalContext scores document paragraphs by shared-term count with
// the question and concatenates the best ones up to the context cap.
func (s *queryService) lexicalContext(question, documentText string) string {
	paragraphs := strings.Split(documentText, "\n")

	queryTerms := make(map[string]bool)
	for _, term := range strings.Fields(strings.ToLower(question)) {
		queryTerms[term] = true
	}

	type scored struct {
		score     int
		paragraph string
	}
	var candidates []scored
	for _, paragraph := range paragraphs {
		if len(strings.TrimSpace(paragraph)) < 20 {
			continue
		}
		lower := strings.ToLower(paragraph)
		score := 0
		for term := range queryTerms {
			if strings.Contains(lower, term) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{score: score, paragraph: paragraph})
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	var builder strings.Builder
	for _, candidate := range candidates {
		if builder.Len()+len(candidate.paragraph) > s.cfg.MaxContextChars {
			break
		}
		builder.WriteString(candidate.paragraph)
		builder.WriteString("\n\n")
	}
	return strings.TrimSpace(builder.String())
}

// buildPrompt is the full instructional template used on the direct
// fallback path. Providers reached through the gateway wrap context
// themselves.
func buildPrompt(question, docContext string) string {
	return fmt.Sprintf(`You are an expert assistant specializing in insurance, legal, HR, and compliance documents. Provide accurate, concise answers based on the given context.

Based on the following document context, please answer the question accurately and concisely.

Context:
%s

Question: %s

Instructions:
1. Answer based only on the information provided in the context
2. Be specific and cite relevant details from the context
3. If the exact information is not available, state that clearly
4. Keep the answer concise but complete
5. Use professional language appropriate for insurance/legal documents

Answer:`, docContext, question)
}

// postProcess cleans a raw model answer: drop Answer:/Response:
// prefixes, flatten whitespace, guarantee terminal punctuation, and cap
// runaway responses at five sentences.
func postProcess(answer string) string {
	answer = answerPrefix.ReplaceAllString(answer, "")
	answer = newlinePattern.ReplaceAllString(answer, " ")
	answer = whitespacePattern.ReplaceAllString(answer, " ")
	answer = strings.TrimSpace(answer)

	if len(answer) > 2000 {
		sentences := strings.SplitAfter(answer, ". ")
		if len(sentences) > 5 {
			answer = strings.TrimSpace(strings.Join(sentences[:5], ""))
		}
	}

	if answer != "" && !strings.HasSuffix(answer, ".") &&
		!strings.HasSuffix(answer, "!") && !strings.HasSuffix(answer, "?") {
		answer += "."
	}
	return answer
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
