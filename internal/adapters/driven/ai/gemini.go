package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Ensure Gemini implements Provider
var _ driven.Provider = (*Gemini)(nil)

// Gemini implements Provider against the Google Generative Language API.
// Several instances with distinct API keys can coexist in the fallback
// order; each carries its own stable name (gemini_1, gemini_2, ...).
type Gemini struct {
	name        string
	apiKey      string
	model       string
	embedModel  string
	baseURL     string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewGemini creates a Gemini provider from a descriptor.
func NewGemini(desc domain.ProviderDescriptor, maxTokens int, temperature float64) (*Gemini, error) {
	if desc.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model := desc.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	embedModel := desc.EmbeddingModel
	if embedModel == "" {
		embedModel = "models/embedding-001"
	}
	baseURL := desc.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &Gemini{
		name:        desc.Name,
		apiKey:      desc.APIKey,
		model:       model,
		embedModel:  embedModel,
		baseURL:     baseURL,
		maxTokens:   maxTokens,
		temperature: temperature,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Name returns the provider's stable identity.
func (g *Gemini) Name() string {
	return g.name
}

// Kind returns the backend family.
func (g *Gemini) Kind() domain.ProviderKind {
	return domain.ProviderKindGemini
}

// Supports reports whether the provider offers a capability.
func (g *Gemini) Supports(capability domain.Capability) bool {
	return capability == domain.CapabilityEmbed || capability == domain.CapabilityGenerate
}

type geminiEmbedRequest struct {
	Model    string `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string `json:"taskType,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Embed generates one embedding per text. The API embeds one content
// per request; a short pause every ten texts keeps bursts under the
// free-tier rate limit.
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for i, text := range texts {
		reqBody := geminiEmbedRequest{
			Model:    g.embedModel,
			Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
			TaskType: "RETRIEVAL_DOCUMENT",
		}

		url := fmt.Sprintf("%s/%s:embedContent?key=%s", g.baseURL, g.embedModel, g.apiKey)
		respBody, status, err := g.post(ctx, url, reqBody)
		if err != nil {
			return nil, err
		}

		var embResp geminiEmbedResponse
		if err := json.Unmarshal(respBody, &embResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if embResp.Error != nil {
			return nil, fmt.Errorf("gemini API error: %s (status: %s)", embResp.Error.Message, embResp.Error.Status)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("gemini API returned status %d", status)
		}
		if len(embResp.Embedding.Values) == 0 {
			return nil, fmt.Errorf("empty embedding from gemini")
		}

		embeddings = append(embeddings, embResp.Embedding.Values)

		if (i+1)%10 == 0 && i+1 < len(texts) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}
	}

	return embeddings, nil
}

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

// Generate answers a question against document context.
func (g *Gemini) Generate(ctx context.Context, question, docContext string) (string, error) {
	prompt := question
	if docContext != "" {
		prompt = fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nAnswer:", docContext, question)
	}

	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: g.maxTokens,
			Temperature:     g.temperature,
			TopP:            0.9,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	respBody, status, err := g.post(ctx, url, reqBody)
	if err != nil {
		return "", err
	}

	var genResp geminiGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("gemini API error: %s (status: %s)", genResp.Error.Message, genResp.Error.Status)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d", status)
	}

	var builder strings.Builder
	for _, candidate := range genResp.Candidates {
		for _, part := range candidate.Content.Parts {
			builder.WriteString(part.Text)
		}
		break
	}

	answer := strings.TrimSpace(builder.String())
	if answer == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return answer, nil
}

func (g *Gemini) post(ctx context.Context, url string, reqBody any) ([]byte, int, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}
