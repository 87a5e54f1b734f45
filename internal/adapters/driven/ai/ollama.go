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

// Ensure Ollama implements LocalProvider
var _ driven.LocalProvider = (*Ollama)(nil)

// OllamaConfig configures the local Ollama provider.
type OllamaConfig struct {
	BaseURL string

	// EmbedModel is the embedding model (nomic-embed-text by default)
	EmbedModel string

	// TextModel is the primary generation model
	TextModel string

	// FallbackTextModel is tried when the primary model fails
	FallbackTextModel string

	MaxTokens   int
	Temperature float64
}

// Ollama implements LocalProvider against a local Ollama daemon. The
// gateway tries it before any remote provider: local inference is free
// and never rate limited.
type Ollama struct {
	baseURL           string
	embedModel        string
	textModel         string
	fallbackTextModel string
	maxTokens         int
	temperature       float64
	client            *http.Client
}

// NewOllama creates an Ollama provider.
func NewOllama(cfg OllamaConfig) *Ollama {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "nomic-embed-text"
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "llama3.2:3b"
	}
	if cfg.FallbackTextModel == "" {
		cfg.FallbackTextModel = "llama3.2:1b"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}

	return &Ollama{
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		embedModel:        cfg.EmbedModel,
		textModel:         cfg.TextModel,
		fallbackTextModel: cfg.FallbackTextModel,
		maxTokens:         cfg.MaxTokens,
		temperature:       cfg.Temperature,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Name returns the provider's stable identity.
func (o *Ollama) Name() string {
	return "ollama"
}

// Kind returns the backend family.
func (o *Ollama) Kind() domain.ProviderKind {
	return domain.ProviderKindOllama
}

// Supports reports whether the provider offers a capability.
func (o *Ollama) Supports(capability domain.Capability) bool {
	return capability == domain.CapabilityEmbed || capability == domain.CapabilityGenerate
}

// Available probes the daemon and checks that both configured models
// are pulled. A negative answer just routes traffic to the remote
// providers; it is never an error.
func (o *Ollama) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, "GET", o.baseURL+"/api/version", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	return o.modelsPresent(probeCtx)
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (o *Ollama) modelsPresent(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}

	embedFound, textFound := false, false
	for _, model := range tags.Models {
		if strings.Contains(model.Name, o.embedModel) {
			embedFound = true
		}
		if strings.Contains(model.Name, o.textModel) {
			textFound = true
		}
	}
	return embedFound && textFound
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates embeddings one text at a time; the embeddings
// endpoint takes a single prompt per call.
func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for _, text := range texts {
		respBody, status, err := o.post(ctx, o.baseURL+"/api/embeddings", ollamaEmbedRequest{
			Model:  o.embedModel,
			Prompt: text,
		})
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("ollama embedding request failed: status %d: %s", status, string(respBody))
		}

		var embResp ollamaEmbedResponse
		if err := json.Unmarshal(respBody, &embResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if len(embResp.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding from ollama")
		}
		embeddings = append(embeddings, embResp.Embedding)
	}

	return embeddings, nil
}

type ollamaGenerateRequest struct {
	Model   string            `json:"model"`
	Prompt  string            `json:"prompt"`
	Stream  bool              `json:"stream"`
	Options ollamaGenOptions  `json:"options"`
}

type ollamaGenOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Generate answers a question against document context. The primary
// text model is tried first, then the smaller fallback model.
func (o *Ollama) Generate(ctx context.Context, question, docContext string) (string, error) {
	prompt := question
	if docContext != "" {
		prompt = fmt.Sprintf(`Context: %s

Question: %s

Please provide a clear and accurate answer based on the context provided. Be concise and specific.

Answer:`, docContext, question)
	}

	var lastErr error
	for _, model := range []string{o.textModel, o.fallbackTextModel} {
		respBody, status, err := o.post(ctx, o.baseURL+"/api/generate", ollamaGenerateRequest{
			Model:  model,
			Prompt: prompt,
			Stream: false,
			Options: ollamaGenOptions{
				NumPredict:  o.maxTokens,
				Temperature: o.temperature,
				TopP:        0.9,
				Stop:        []string{"Question:", "Context:"},
			},
		})
		if err != nil {
			lastErr = err
			continue
		}
		if status != http.StatusOK {
			lastErr = fmt.Errorf("ollama generation failed with %s: status %d: %s", model, status, string(respBody))
			continue
		}

		var genResp ollamaGenerateResponse
		if err := json.Unmarshal(respBody, &genResp); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			continue
		}

		answer := strings.TrimSpace(genResp.Response)
		if answer == "" {
			lastErr = fmt.Errorf("empty response from %s", model)
			continue
		}
		return answer, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no text models configured")
	}
	return "", fmt.Errorf("all local text models failed: %w", lastErr)
}

func (o *Ollama) post(ctx context.Context, url string, reqBody any) ([]byte, int, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
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
