package normalisers

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// fakeRunner records the command it was asked to run and returns a
// scripted result.
type fakeRunner struct {
	output []byte
	err    error

	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	return f.output, f.err
}

func TestPDFNormalise(t *testing.T) {
	runner := &fakeRunner{output: []byte("  Extracted policy text.\n")}
	n := NewPDFNormaliser(runner)

	text, err := n.Normalise(context.Background(), &domain.RawDocument{
		MimeType: "application/pdf",
		Content:  []byte("%PDF-1.4 fake body"),
	})
	if err != nil {
		t.Fatalf("Normalise() error = %v", err)
	}
	if text != "Extracted policy text." {
		t.Errorf("Normalise() = %q, want trimmed pdftotext output", text)
	}

	if runner.name != "pdftotext" {
		t.Errorf("ran %q, want pdftotext", runner.name)
	}
	if len(runner.args) != 3 || runner.args[0] != "-layout" || runner.args[2] != "-" {
		t.Errorf("args = %v, want [-layout <tempfile> -]", runner.args)
	}
	// The temp file must be gone after extraction.
	if _, err := os.Stat(runner.args[1]); !os.IsNotExist(err) {
		t.Errorf("temp file %q not cleaned up", runner.args[1])
	}
}

func TestPDFNormaliseEmptyOutput(t *testing.T) {
	n := NewPDFNormaliser(&fakeRunner{output: []byte("   \n")})

	_, err := n.Normalise(context.Background(), &domain.RawDocument{
		MimeType: "application/pdf",
		Content:  []byte("%PDF-1.4"),
	})
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Errorf("Normalise() error = %v, want ErrEmptyDocument", err)
	}
}

func TestPDFNormaliseToolFailure(t *testing.T) {
	n := NewPDFNormaliser(&fakeRunner{err: errors.New("exit status 1")})

	_, err := n.Normalise(context.Background(), &domain.RawDocument{
		MimeType: "application/pdf",
		Content:  []byte("%PDF-1.4"),
	})
	if err == nil {
		t.Fatal("Normalise() error = nil, want pdftotext failure")
	}
}

func TestPDFNormaliseEmptyContent(t *testing.T) {
	n := NewPDFNormaliser(&fakeRunner{})

	_, err := n.Normalise(context.Background(), &domain.RawDocument{MimeType: "application/pdf"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Normalise() error = %v, want ErrInvalidInput", err)
	}
}
