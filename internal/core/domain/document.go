package domain

// RawDocument is a downloaded document before text extraction.
type RawDocument struct {
	URI      string
	MimeType string
	Content  []byte
}

// Chunk represents a retrievable span of document text.
// Chunks are owned by the vector store for the lifetime of one loaded
// document and replaced wholesale when a new document is loaded.
type Chunk struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	Position  int       `json:"position"` // Chunk position within document
	StartChar int       `json:"start_char"`
	EndChar   int       `json:"end_char"`
}

// SearchResult is a single similarity hit. Produced fresh per query,
// never persisted.
type SearchResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float32 `json:"score"`
	Rank  int     `json:"rank"` // 1-based
}

// Snapshot is the durable form of a loaded document: the chunk list and
// its parallel embedding matrix, plus the content hash that identifies it.
type Snapshot struct {
	DocumentHash string
	Dimension    int
	Chunks       []*Chunk
	Vectors      [][]float32
}
