package normalisers

import (
	"context"
	"fmt"
	"testing"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

func TestRegistrySelectsByPriority(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		mimeType string
		want     string
	}{
		{"application/pdf", "*normalisers.PDFNormaliser"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "*normalisers.DocxNormaliser"},
		{"text/plain", "*normalisers.PlaintextNormaliser"},
		{"text/html", "*normalisers.PlaintextNormaliser"},
		{"application/octet-stream", "*normalisers.PlaintextNormaliser"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			n := r.Get(tt.mimeType)
			if n == nil {
				t.Fatalf("Get(%q) = nil", tt.mimeType)
			}
			if got := fmt.Sprintf("%T", n); got != tt.want {
				t.Errorf("Get(%q) = %s, want %s", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestRegistryEmptyReturnsNil(t *testing.T) {
	r := NewRegistry()
	if n := r.Get("application/pdf"); n != nil {
		t.Errorf("Get() = %T, want nil from empty registry", n)
	}
}

func TestMatchesMIMEType(t *testing.T) {
	tests := []struct {
		name      string
		supported []string
		mimeType  string
		want      bool
	}{
		{"exact", []string{"application/pdf"}, "application/pdf", true},
		{"case insensitive", []string{"application/pdf"}, "Application/PDF", true},
		{"charset stripped", []string{"text/plain"}, "text/plain; charset=utf-8", true},
		{"prefix wildcard", []string{"text/*"}, "text/markdown", true},
		{"universal wildcard", []string{"*/*"}, "application/anything", true},
		{"no match", []string{"application/pdf"}, "application/zip", false},
		{"wildcard wrong family", []string{"text/*"}, "application/json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesMIMEType(tt.supported, tt.mimeType); got != tt.want {
				t.Errorf("matchesMIMEType(%v, %q) = %v, want %v", tt.supported, tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestPlaintextNormalise(t *testing.T) {
	n := NewPlaintextNormaliser()

	text, err := n.Normalise(context.Background(), &domain.RawDocument{
		MimeType: "text/plain",
		Content:  []byte("  line one\r\nline two\rline three  \n"),
	})
	if err != nil {
		t.Fatalf("Normalise() error = %v", err)
	}
	want := "line one\nline two\nline three"
	if text != want {
		t.Errorf("Normalise() = %q, want %q", text, want)
	}
}

func TestPlaintextNormaliseNilDocument(t *testing.T) {
	n := NewPlaintextNormaliser()
	if _, err := n.Normalise(context.Background(), nil); err != domain.ErrInvalidInput {
		t.Errorf("Normalise(nil) error = %v, want ErrInvalidInput", err)
	}
}
