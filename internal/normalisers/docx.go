package normalisers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Normaliser = (*DocxNormaliser)(nil)

// DocxNormaliser extracts text from DOCX documents. A DOCX file is a
// ZIP archive; the text lives in word/document.xml as paragraphs of
// runs of text elements.
type DocxNormaliser struct{}

// NewDocxNormaliser creates a DOCX normaliser.
func NewDocxNormaliser() *DocxNormaliser {
	return &DocxNormaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *DocxNormaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns 50 - format-specific normaliser.
func (n *DocxNormaliser) Priority() int {
	return 50
}

// Normalise converts a DOCX document to plain text.
func (n *DocxNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil || len(raw.Content) == 0 {
		return "", domain.ErrInvalidInput
	}

	// Open as ZIP archive
	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return "", domain.ErrInvalidInput
	}

	return extractDocumentText(reader)
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", domain.ErrInvalidInput
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", domain.ErrInvalidInput
		}

		return parseDocumentXML(content), nil
	}
	return "", domain.ErrEmptyDocument
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String())
}
