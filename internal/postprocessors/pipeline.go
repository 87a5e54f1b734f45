package postprocessors

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// PostProcessor transforms the chunk list on its way to embedding.
type PostProcessor interface {
	Process(chunks []*domain.Chunk) []*domain.Chunk
	Name() string
	Order() int
}

// Pipeline chains post-processors in order, starting with a Chunker.
type Pipeline struct {
	mu         sync.RWMutex
	processors []PostProcessor
	sorted     bool
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]PostProcessor, 0),
	}
}

// Add adds a processor. Processors are sorted by Order() before use.
func (p *Pipeline) Add(processor PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process turns raw document text into chunks ready for embedding.
func (p *Pipeline) Process(content string) []*domain.Chunk {
	p.mu.Lock()
	if !p.sorted {
		sort.Slice(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	processors := make([]PostProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.Unlock()

	// Start with a single chunk containing all content
	chunks := []*domain.Chunk{
		{
			Content:   content,
			Position:  0,
			StartChar: 0,
			EndChar:   len(content),
		},
	}

	for _, proc := range processors {
		chunks = proc.Process(chunks)
	}

	// Stable chunk identity within one document load
	for i, chunk := range chunks {
		chunk.ID = fmt.Sprintf("chunk_%d", i)
		chunk.Position = i
	}

	return chunks
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline creates a pipeline with the default processors.
func DefaultPipeline(chunkSize, overlap int) *Pipeline {
	p := NewPipeline()
	cfg := DefaultChunkConfig()
	if chunkSize > 0 {
		cfg.MaxChunkSize = chunkSize
	}
	if overlap > 0 {
		cfg.Overlap = overlap
	}
	p.Add(NewChunker(cfg))
	p.Add(NewWhitespaceNormalizer())
	return p
}

// ChunkConfig configures the chunker behavior.
type ChunkConfig struct {
	// MaxChunkSize is the maximum characters per chunk
	MaxChunkSize int

	// Overlap is the character overlap between chunks
	Overlap int

	// PreserveSentences tries to break at sentence boundaries
	PreserveSentences bool

	// PreserveParagraphs tries to break at paragraph boundaries
	PreserveParagraphs bool
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:       2048,
		Overlap:            50,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Chunker splits content into overlapping chunks, preferring sentence
// and paragraph boundaries. Always the first processor (Order 0).
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ PostProcessor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkConfig) *Chunker {
	return &Chunker{config: config}
}

// Process splits content into chunks.
func (c *Chunker) Process(chunks []*domain.Chunk) []*domain.Chunk {
	var result []*domain.Chunk
	for _, chunk := range chunks {
		result = append(result, c.splitContent(chunk.Content, chunk.StartChar)...)
	}
	return result
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 0 - chunker should be first.
func (c *Chunker) Order() int {
	return 0
}

func (c *Chunker) splitContent(content string, baseOffset int) []*domain.Chunk {
	if len(content) <= c.config.MaxChunkSize {
		return []*domain.Chunk{
			{
				Content:   content,
				StartChar: baseOffset,
				EndChar:   baseOffset + len(content),
			},
		}
	}

	var chunks []*domain.Chunk
	start := 0

	for start < len(content) {
		end := start + c.config.MaxChunkSize
		if end > len(content) {
			end = len(content)
		}

		if end < len(content) && c.config.PreserveSentences {
			if breakPoint := c.findBreakPoint(content, start, end); breakPoint > start {
				end = breakPoint
			}
		}

		chunks = append(chunks, &domain.Chunk{
			Content:   content[start:end],
			StartChar: baseOffset + start,
			EndChar:   baseOffset + end,
		})

		if end >= len(content) {
			break
		}

		// Move start with overlap, ensuring we always advance
		nextStart := end - c.config.Overlap
		if nextStart <= start {
			nextStart = start + 1
		}
		start = nextStart
	}

	return chunks
}

// findBreakPoint finds a good break point near the end of a chunk.
func (c *Chunker) findBreakPoint(content string, start, maxEnd int) int {
	searchStart := maxEnd - 100
	if searchStart < start {
		searchStart = start
	}

	searchContent := content[searchStart:maxEnd]

	// Paragraph boundary first
	if c.config.PreserveParagraphs {
		if idx := strings.LastIndex(searchContent, "\n\n"); idx != -1 {
			return searchStart + idx + 2
		}
	}

	// Then sentence boundary
	if c.config.PreserveSentences {
		sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
		bestIdx := -1

		for _, ender := range sentenceEnders {
			if idx := strings.LastIndex(searchContent, ender); idx != -1 {
				endPos := idx + len(ender)
				if endPos > bestIdx {
					bestIdx = endPos
				}
			}
		}

		if bestIdx > 0 {
			return searchStart + bestIdx
		}
	}

	// Then word boundary
	if idx := strings.LastIndex(searchContent, " "); idx != -1 {
		return searchStart + idx + 1
	}

	return maxEnd
}

// WhitespaceNormalizer flattens whitespace inside chunks and drops
// chunks that end up empty.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ PostProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Process normalizes whitespace in chunks.
func (w *WhitespaceNormalizer) Process(chunks []*domain.Chunk) []*domain.Chunk {
	result := make([]*domain.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		content := chunk.Content

		content = strings.ReplaceAll(content, "\r\n", "\n")
		content = strings.ReplaceAll(content, "\r", "\n")

		lines := strings.Split(content, "\n")
		for i, line := range lines {
			for strings.Contains(line, "  ") {
				line = strings.ReplaceAll(line, "  ", " ")
			}
			lines[i] = strings.TrimSpace(line)
		}
		content = strings.Join(lines, "\n")

		for strings.Contains(content, "\n\n\n") {
			content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
		}

		content = strings.TrimSpace(content)

		if len(content) > 0 {
			chunk.Content = content
			result = append(result, chunk)
		}
	}

	return result
}

// Name returns the processor name.
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 5 - runs after the chunker.
func (w *WhitespaceNormalizer) Order() int {
	return 5
}
