package driven

import (
	"context"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// Normaliser extracts plain text from one document format.
type Normaliser interface {
	// Normalise converts a raw document to plain text
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)

	// SupportedMIMETypes returns the MIME types this normaliser handles.
	// Wildcards like "text/*" are allowed.
	SupportedMIMETypes() []string

	// Priority breaks ties when multiple normalisers match (highest wins)
	Priority() int
}

// NormaliserRegistry selects a normaliser for a MIME type.
type NormaliserRegistry interface {
	Register(normaliser Normaliser)
	Get(mimeType string) Normaliser
	List() []string
}

// CommandRunner executes an external command and returns its stdout.
// Used by normalisers that delegate to system tools (pdftotext).
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
