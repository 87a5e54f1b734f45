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

// Ensure OpenAI implements Provider
var _ driven.Provider = (*OpenAI)(nil)

// OpenAI implements Provider using OpenAI's embedding and chat APIs.
type OpenAI struct {
	name        string
	apiKey      string
	model       string
	embedModel  string
	baseURL     string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewOpenAI creates an OpenAI provider from a descriptor.
func NewOpenAI(desc domain.ProviderDescriptor, maxTokens int, temperature float64) (*OpenAI, error) {
	if desc.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := desc.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	embedModel := desc.EmbeddingModel
	if embedModel == "" {
		embedModel = "text-embedding-ada-002"
	}
	baseURL := desc.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAI{
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
func (o *OpenAI) Name() string {
	return o.name
}

// Kind returns the backend family.
func (o *OpenAI) Kind() domain.ProviderKind {
	return domain.ProviderKindOpenAI
}

// Supports reports whether the provider offers a capability.
func (o *OpenAI) Supports(capability domain.Capability) bool {
	return capability == domain.CapabilityEmbed || capability == domain.CapabilityGenerate
}

// openaiEmbeddingRequest is the request body for the embedding API
type openaiEmbeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

// openaiEmbeddingResponse is the response from the embedding API
type openaiEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *openaiError `json:"error,omitempty"`
}

type openaiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Embed generates embeddings for multiple texts. The API accepts large
// batches, so texts go up in slices of 100.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	const batchSize = 100

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		reqBody := openaiEmbeddingRequest{
			Input:          texts[start:end],
			Model:          o.embedModel,
			EncodingFormat: "float",
		}

		respBody, status, err := o.post(ctx, o.baseURL+"/embeddings", reqBody)
		if err != nil {
			return nil, err
		}

		var embResp openaiEmbeddingResponse
		if err := json.Unmarshal(respBody, &embResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if embResp.Error != nil {
			return nil, fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
				embResp.Error.Message, embResp.Error.Type, embResp.Error.Code)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("OpenAI API returned status %d", status)
		}

		// Sort by index to ensure order matches input
		for _, d := range embResp.Data {
			if start+d.Index < len(embeddings) {
				embeddings[start+d.Index] = d.Embedding
			}
		}
	}

	return embeddings, nil
}

type openaiChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Error *openaiError `json:"error,omitempty"`
}

// Generate answers a question against document context through the
// chat completions API.
func (o *OpenAI) Generate(ctx context.Context, question, docContext string) (string, error) {
	user := question
	if docContext != "" {
		user = fmt.Sprintf("Context: %s\n\nQuestion: %s", docContext, question)
	}

	reqBody := openaiChatRequest{
		Model: o.model,
		Messages: []openaiMessage{
			{Role: "system", Content: "You are a helpful assistant that answers questions based on the provided context."},
			{Role: "user", Content: user},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	respBody, status, err := o.post(ctx, o.baseURL+"/chat/completions", reqBody)
	if err != nil {
		return "", err
	}

	var chatResp openaiChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("OpenAI API returned status %d", status)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response content from OpenAI")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func (o *OpenAI) post(ctx context.Context, url string, reqBody any) ([]byte, int, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

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
