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

// Ensure Perplexity implements Provider
var _ driven.Provider = (*Perplexity)(nil)

// Perplexity implements the generation half of Provider against the
// Perplexity chat API. Perplexity offers no embedding endpoint, so
// Embed always fails with ErrCapabilityUnsupported and the gateway
// skips this provider for embedding work.
type Perplexity struct {
	name        string
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewPerplexity creates a Perplexity provider from a descriptor.
func NewPerplexity(desc domain.ProviderDescriptor, maxTokens int, temperature float64) (*Perplexity, error) {
	if desc.APIKey == "" {
		return nil, fmt.Errorf("perplexity API key is required")
	}

	model := desc.Model
	if model == "" {
		model = "sonar-large-chat"
	}
	baseURL := desc.BaseURL
	if baseURL == "" {
		baseURL = "https://api.perplexity.ai"
	}

	return &Perplexity{
		name:        desc.Name,
		apiKey:      desc.APIKey,
		model:       model,
		baseURL:     baseURL,
		maxTokens:   maxTokens,
		temperature: temperature,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Name returns the provider's stable identity.
func (p *Perplexity) Name() string {
	return p.name
}

// Kind returns the backend family.
func (p *Perplexity) Kind() domain.ProviderKind {
	return domain.ProviderKindPerplexity
}

// Supports reports whether the provider offers a capability.
func (p *Perplexity) Supports(capability domain.Capability) bool {
	return capability == domain.CapabilityGenerate
}

// Embed is unsupported.
func (p *Perplexity) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: perplexity cannot embed", domain.ErrCapabilityUnsupported)
}

type perplexityChatRequest struct {
	Model       string             `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityChatResponse struct {
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate answers a question against document context.
func (p *Perplexity) Generate(ctx context.Context, question, docContext string) (string, error) {
	user := question
	if docContext != "" {
		user = fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nPlease provide a clear and accurate answer based on the context provided.", docContext, question)
	}

	reqBody := perplexityChatRequest{
		Model: p.model,
		Messages: []perplexityMessage{
			{Role: "system", Content: "You are a helpful assistant that answers questions based on the provided context. Provide accurate, concise answers."},
			{Role: "user", Content: user},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Stream:      false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("perplexity API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp perplexityChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse perplexity response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("perplexity API error: %s (type: %s)", chatResp.Error.Message, chatResp.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("perplexity API returned status %d", resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response content from perplexity")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
