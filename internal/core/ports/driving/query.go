package driving

import "context"

// QueryService is the core's upward interface: load one document, then
// answer questions against it. These are the only two entry points a
// serving layer needs.
type QueryService interface {
	// LoadDocument chunks and embeds the extracted text and commits it to
	// the vector index. When contentHash matches the previously loaded
	// document and the index is non-empty, embedding work is skipped.
	LoadDocument(ctx context.Context, text string, contentHash string) error

	// AnswerQuestion answers one question from the loaded document.
	// fallbackText is the raw document text, used for lexical retrieval
	// when the vector index yields nothing. Never returns an error for a
	// per-question failure: the answer degrades instead.
	AnswerQuestion(ctx context.Context, question string, fallbackText string) string
}
