package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentFetcher = (*HTTPFetcher)(nil)

// Some document hosts reject requests without a browser user agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxDocumentSize caps downloads at 50 MB.
const maxDocumentSize = 50 << 20

var driveFilePattern = regexp.MustCompile(`drive\.google\.com/file/d/([^/]+)`)

// HTTPFetcher downloads documents over HTTP(S). Google Drive share
// links are rewritten to direct-download form before fetching.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a document fetcher.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads the document and detects its MIME type.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: empty document url", domain.ErrInvalidInput)
	}

	fetchURL := rewriteDriveURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, "GET", fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download document: status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	if len(content) > maxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d byte limit", maxDocumentSize)
	}
	if len(content) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	return &domain.RawDocument{
		URI:      rawURL,
		MimeType: detectMIMEType(rawURL, resp.Header.Get("Content-Type"), content),
		Content:  content,
	}, nil
}

// rewriteDriveURL converts a Google Drive share link into the direct
// download endpoint. Other URLs pass through untouched.
func rewriteDriveURL(rawURL string) string {
	if m := driveFilePattern.FindStringSubmatch(rawURL); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1]
	}
	return rawURL
}

// detectMIMEType resolves the document type, most reliable signal
// first: magic bytes, then the URL extension, then the Content-Type
// header. Drive and proxy downloads routinely lie in their headers.
func detectMIMEType(rawURL, contentType string, content []byte) string {
	if bytes.HasPrefix(content, []byte("%PDF")) {
		return "application/pdf"
	}
	// DOCX is a ZIP archive
	if bytes.HasPrefix(content, []byte("PK\x03\x04")) {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		switch strings.ToLower(path.Ext(parsed.Path)) {
		case ".pdf":
			return "application/pdf"
		case ".docx":
			return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		case ".txt":
			return "text/plain"
		}
	}

	if contentType != "" {
		if idx := strings.Index(contentType, ";"); idx != -1 {
			contentType = contentType[:idx]
		}
		return strings.TrimSpace(strings.ToLower(contentType))
	}

	return "text/plain"
}
