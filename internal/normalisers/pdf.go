package normalisers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Normaliser = (*PDFNormaliser)(nil)
var _ driven.CommandRunner = (*ExecRunner)(nil)

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run executes the command and returns its stdout.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFNormaliser extracts text from PDF documents by shelling out to
// pdftotext (poppler-utils). The runner is injectable for tests.
type PDFNormaliser struct {
	runner driven.CommandRunner
}

// NewPDFNormaliser creates a PDF normaliser. A nil runner uses os/exec.
func NewPDFNormaliser(runner driven.CommandRunner) *PDFNormaliser {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PDFNormaliser{runner: runner}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *PDFNormaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns 50 - format-specific normaliser.
func (n *PDFNormaliser) Priority() int {
	return 50
}

// Normalise writes the PDF to a temp file and extracts layout-preserved
// text with pdftotext.
func (n *PDFNormaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil || len(raw.Content) == 0 {
		return "", domain.ErrInvalidInput
	}

	tmp, err := os.CreateTemp("", "docquery-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(raw.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// "-" sends extracted text to stdout
	out, err := n.runner.Run(ctx, "pdftotext", "-layout", filepath.Clean(path), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", domain.ErrEmptyDocument
	}
	return text, nil
}
