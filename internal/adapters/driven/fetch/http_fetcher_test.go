package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

func TestFetchPlainDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != browserUserAgent {
			t.Errorf("User-Agent = %q, want browser agent", ua)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("The grace period is thirty days."))
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	doc, err := f.Fetch(context.Background(), srv.URL+"/policy")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if string(doc.Content) != "The grace period is thirty days." {
		t.Errorf("Content = %q", doc.Content)
	}
	if doc.MimeType != "text/plain" {
		t.Errorf("MimeType = %q, want text/plain", doc.MimeType)
	}
	if doc.URI != srv.URL+"/policy" {
		t.Errorf("URI = %q", doc.URI)
	}
}

func TestFetchDetectsPDFByMagicBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Lying Content-Type; magic bytes win.
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	doc, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if doc.MimeType != "application/pdf" {
		t.Errorf("MimeType = %q, want application/pdf", doc.MimeType)
	}
}

func TestFetchEmptyURL(t *testing.T) {
	_, err := NewHTTPFetcher().Fetch(context.Background(), "   ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Fetch() error = %v, want ErrInvalidInput", err)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() error = nil, want status error")
	}
}

func TestFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Errorf("Fetch() error = %v, want ErrEmptyDocument", err)
	}
}

func TestRewriteDriveURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"drive share link",
			"https://drive.google.com/file/d/1AbC_dEf/view?usp=sharing",
			"https://drive.google.com/uc?export=download&id=1AbC_dEf",
		},
		{
			"regular url untouched",
			"https://example.com/policy.pdf",
			"https://example.com/policy.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewriteDriveURL(tt.in); got != tt.want {
				t.Errorf("rewriteDriveURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectMIMEType(t *testing.T) {
	const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	tests := []struct {
		name        string
		url         string
		contentType string
		content     []byte
		want        string
	}{
		{"pdf magic", "https://x/doc", "", []byte("%PDF-1.7"), "application/pdf"},
		{"zip magic means docx", "https://x/doc", "", []byte("PK\x03\x04rest"), docxMIME},
		{"pdf extension", "https://x/policy.PDF", "", []byte("plain"), "application/pdf"},
		{"docx extension", "https://x/policy.docx?v=2", "", []byte("plain"), docxMIME},
		{"txt extension", "https://x/notes.txt", "", []byte("plain"), "text/plain"},
		{"header with params", "https://x/doc", "Text/HTML; charset=utf-8", []byte("plain"), "text/html"},
		{"fallback", "https://x/doc", "", []byte("plain"), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.url, tt.contentType, tt.content); got != tt.want {
				t.Errorf("detectMIMEType() = %q, want %q", got, tt.want)
			}
		})
	}
}
