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

// Ensure HuggingFace implements Provider
var _ driven.Provider = (*HuggingFace)(nil)

// HuggingFace implements Provider against the Hugging Face Inference
// API. Embeddings go through the feature-extraction pipeline of a
// sentence-transformers model; generation through text-generation.
// Sits last in the fallback order as the free tier.
type HuggingFace struct {
	name       string
	apiKey     string
	model      string
	embedModel string
	baseURL    string
	maxTokens  int
	client     *http.Client
}

// NewHuggingFace creates a Hugging Face provider from a descriptor.
func NewHuggingFace(desc domain.ProviderDescriptor, maxTokens int) (*HuggingFace, error) {
	if desc.APIKey == "" {
		return nil, fmt.Errorf("hugging face API key is required")
	}

	model := desc.Model
	if model == "" {
		model = "microsoft/DialoGPT-medium"
	}
	embedModel := desc.EmbeddingModel
	if embedModel == "" {
		embedModel = "sentence-transformers/all-MiniLM-L6-v2"
	}
	baseURL := desc.BaseURL
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}

	return &HuggingFace{
		name:       desc.Name,
		apiKey:     desc.APIKey,
		model:      model,
		embedModel: embedModel,
		baseURL:    baseURL,
		maxTokens:  maxTokens,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Name returns the provider's stable identity.
func (h *HuggingFace) Name() string {
	return h.name
}

// Kind returns the backend family.
func (h *HuggingFace) Kind() domain.ProviderKind {
	return domain.ProviderKindHuggingFace
}

// Supports reports whether the provider offers a capability.
func (h *HuggingFace) Supports(capability domain.Capability) bool {
	return capability == domain.CapabilityEmbed || capability == domain.CapabilityGenerate
}

type hfEmbedRequest struct {
	Inputs  []string      `json:"inputs"`
	Options hfCallOptions `json:"options"`
}

type hfCallOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Embed generates sentence embeddings through the feature-extraction
// pipeline.
func (h *HuggingFace) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", h.baseURL, h.embedModel)
	respBody, status, err := h.post(ctx, url, hfEmbedRequest{
		Inputs:  texts,
		Options: hfCallOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("hugging face API returned status %d: %s", status, hfErrorMessage(respBody))
	}

	var embeddings [][]float32
	if err := json.Unmarshal(respBody, &embeddings); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}
	return embeddings, nil
}

type hfGenerateRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters hfGenParams    `json:"parameters"`
	Options    hfCallOptions  `json:"options"`
}

type hfGenParams struct {
	MaxNewTokens   int  `json:"max_new_tokens,omitempty"`
	ReturnFullText bool `json:"return_full_text"`
}

type hfGenerateResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// Generate answers a question through the text-generation pipeline.
func (h *HuggingFace) Generate(ctx context.Context, question, docContext string) (string, error) {
	prompt := question
	if docContext != "" {
		prompt = fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nAnswer:", docContext, question)
	}

	maxNew := h.maxTokens
	if maxNew > 250 {
		// Free-tier inference caps new tokens well below the paid APIs
		maxNew = 250
	}

	url := fmt.Sprintf("%s/models/%s", h.baseURL, h.model)
	respBody, status, err := h.post(ctx, url, hfGenerateRequest{
		Inputs: prompt,
		Parameters: hfGenParams{
			MaxNewTokens:   maxNew,
			ReturnFullText: false,
		},
		Options: hfCallOptions{WaitForModel: true},
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("hugging face API returned status %d: %s", status, hfErrorMessage(respBody))
	}

	var genResp hfGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(genResp) == 0 {
		return "", fmt.Errorf("no response content from hugging face")
	}

	answer := strings.TrimSpace(genResp[0].GeneratedText)
	if answer == "" {
		return "", fmt.Errorf("empty response from hugging face")
	}
	return answer, nil
}

func (h *HuggingFace) post(ctx context.Context, url string, reqBody any) ([]byte, int, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
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

func hfErrorMessage(body []byte) string {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return string(body)
}
