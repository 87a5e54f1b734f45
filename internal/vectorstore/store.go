package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// normEpsilon is added to vector norms before division so zero vectors
// do not blow up normalisation.
const normEpsilon = 1e-8

// Embedder is the slice of the gateway the store needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// snapshot is one committed document: chunk list plus its parallel,
// unit-normalised embedding matrix. Snapshots are immutable once
// published; a reload builds a new one aside and swaps the pointer, so
// readers never observe a torn state.
type snapshot struct {
	documentHash string
	dimension    int
	chunks       []*domain.Chunk
	vectors      [][]float32
}

// Store is the chunk store and flat inner-product vector index for the
// currently loaded document. Single-writer during document load,
// multi-reader during question answering.
type Store struct {
	mu      sync.RWMutex
	current *snapshot

	embedder Embedder
	persist  driven.SnapshotStore
	logger   *slog.Logger
}

// New creates an empty Store. persist may be nil to disable durability.
func New(embedder Embedder, persist driven.SnapshotStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		current:  &snapshot{},
		embedder: embedder,
		persist:  persist,
		logger:   logger,
	}
}

// Restore loads the persisted snapshot, if any. Corrupt or missing
// snapshots leave the store empty; startup never fails here.
func (s *Store) Restore(ctx context.Context) {
	if s.persist == nil {
		return
	}
	snap, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Info("no usable snapshot, starting fresh", "error", err)
		return
	}
	s.mu.Lock()
	s.current = &snapshot{
		documentHash: snap.DocumentHash,
		dimension:    snap.Dimension,
		chunks:       snap.Chunks,
		vectors:      snap.Vectors,
	}
	s.mu.Unlock()
	s.logger.Info("restored vector store snapshot",
		"chunks", len(snap.Chunks), "dimension", snap.Dimension)
}

// Load replaces the store's contents with the given chunks, embedding
// their text through the gateway. When documentHash matches the current
// document and the store is non-empty the call is a no-op: embedding
// cost is paid at most once per distinct document content.
func (s *Store) Load(ctx context.Context, chunks []*domain.Chunk, documentHash string) error {
	if len(chunks) == 0 {
		s.logger.Warn("no chunks provided to vector store")
		return nil
	}

	s.mu.RLock()
	cached := documentHash != "" && s.current.documentHash == documentHash && len(s.current.chunks) > 0
	s.mu.RUnlock()
	if cached {
		s.logger.Info("document already processed, skipping embedding",
			"hash", shortHash(documentHash))
		return nil
	}

	s.logger.Info("adding chunks to vector store", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrDimensionMismatch, len(vectors), len(chunks))
	}

	dimension := len(vectors[0])
	for i := range vectors {
		if len(vectors[i]) != dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d",
				domain.ErrDimensionMismatch, i, len(vectors[i]), dimension)
		}
		vectors[i] = Normalize(vectors[i])
		chunks[i].Embedding = vectors[i]
	}

	next := &snapshot{
		documentHash: documentHash,
		dimension:    dimension,
		chunks:       chunks,
		vectors:      vectors,
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	if s.persist != nil {
		err := s.persist.Save(ctx, &domain.Snapshot{
			DocumentHash: documentHash,
			Dimension:    dimension,
			Chunks:       chunks,
			Vectors:      vectors,
		})
		if err != nil {
			// Durability is a cache, not a contract
			s.logger.Error("failed to persist snapshot", "error", err)
		}
	}

	s.logger.Info("vector store loaded", "chunks", len(chunks), "dimension", dimension)
	return nil
}

// Search embeds the query and returns the top-k chunks by inner product
// (cosine similarity, given unit-normalised vectors). Results come back
// in descending score order, ties broken by ascending chunk index, rank
// 1-based. k is clamped to the index size.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()

	if len(snap.chunks) == 0 {
		s.logger.Warn("search against empty vector store")
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: no vector returned")
	}
	if len(vectors[0]) != snap.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			domain.ErrDimensionMismatch, len(vectors[0]), snap.dimension)
	}
	queryVector := Normalize(vectors[0])

	return snap.topK(queryVector, topK), nil
}

// topK is the brute-force scoring pass. Flat scan is fine at the chunk
// counts this serves (hundreds, not millions).
func (sn *snapshot) topK(query []float32, k int) []domain.SearchResult {
	if k <= 0 {
		k = 1
	}
	if k > len(sn.vectors) {
		k = len(sn.vectors)
	}

	type scored struct {
		index int
		score float32
	}
	scores := make([]scored, len(sn.vectors))
	for i, vector := range sn.vectors {
		scores[i] = scored{index: i, score: dot(query, vector)}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		if scores[a].score != scores[b].score {
			return scores[a].score > scores[b].score
		}
		return scores[a].index < scores[b].index
	})

	results := make([]domain.SearchResult, k)
	for i := 0; i < k; i++ {
		results[i] = domain.SearchResult{
			Chunk: sn.chunks[scores[i].index],
			Score: scores[i].score,
			Rank:  i + 1,
		}
	}
	return results
}

// RelevantContext combines the top matching chunks into one context
// string, each part annotated with its similarity score.
func (s *Store) RelevantContext(ctx context.Context, query string, maxChunks int) (string, error) {
	results, err := s.Search(ctx, query, maxChunks)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	parts := make([]string, len(results))
	for i, result := range results {
		parts[i] = fmt.Sprintf("[Score: %.3f] %s", result.Score, result.Chunk.Content)
	}
	context := parts[0]
	for _, part := range parts[1:] {
		context += "\n\n" + part
	}
	return context, nil
}

// Size returns the number of indexed chunks.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.current.chunks)
}

// DocumentHash returns the hash of the currently loaded document.
func (s *Store) DocumentHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.documentHash
}

// Reset drops all chunks and vectors atomically.
func (s *Store) Reset() {
	s.mu.Lock()
	s.current = &snapshot{}
	s.mu.Unlock()
}

// Normalize scales a vector to unit L2 length. A small epsilon keeps
// zero vectors finite.
func Normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum) + normEpsilon

	normalized := make([]float32, len(vector))
	for i, v := range vector {
		normalized[i] = float32(float64(v) / norm)
	}
	return normalized
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
