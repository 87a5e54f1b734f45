package normalisers

import (
	"context"
	"strings"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Normaliser = (*PlaintextNormaliser)(nil)

// PlaintextNormaliser handles plain text content. Registered as the
// universal fallback so unknown types degrade to a raw-text read
// instead of an unsupported-format error.
type PlaintextNormaliser struct{}

// NewPlaintextNormaliser creates a plain text normaliser.
func NewPlaintextNormaliser() *PlaintextNormaliser {
	return &PlaintextNormaliser{}
}

// Normalise cleans up line endings and trims whitespace.
func (n *PlaintextNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	content := string(raw.Content)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimSpace(content), nil
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *PlaintextNormaliser) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/*", "*/*"}
}

// Priority returns 1 - lowest priority, fallback.
func (n *PlaintextNormaliser) Priority() int {
	return 1
}
