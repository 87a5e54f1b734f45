package ai

import (
	"fmt"
	"log/slog"

	"github.com/custodia-labs/docquery-core/internal/config"
	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Factory builds providers from configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a provider factory.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Describe derives the remote provider descriptors from configuration,
// in fallback order: gemini keys first, then openai, perplexity, and
// the hugging face free tier last. Descriptors with missing
// credentials are simply absent.
func (f *Factory) Describe(cfg config.Config) []domain.ProviderDescriptor {
	var descriptors []domain.ProviderDescriptor

	for i, key := range cfg.GeminiAPIKeys {
		descriptors = append(descriptors, domain.ProviderDescriptor{
			Name:           fmt.Sprintf("gemini_%d", i+1),
			Kind:           domain.ProviderKindGemini,
			Model:          cfg.GeminiModel,
			EmbeddingModel: cfg.GeminiEmbedModel,
			APIKey:         key,
		})
	}

	if cfg.OpenAIAPIKey != "" {
		descriptors = append(descriptors, domain.ProviderDescriptor{
			Name:           "openai",
			Kind:           domain.ProviderKindOpenAI,
			Model:          cfg.OpenAIModel,
			EmbeddingModel: "text-embedding-ada-002",
			APIKey:         cfg.OpenAIAPIKey,
		})
	}

	if cfg.PerplexityAPIKey != "" {
		descriptors = append(descriptors, domain.ProviderDescriptor{
			Name:   "perplexity",
			Kind:   domain.ProviderKindPerplexity,
			Model:  cfg.PerplexityModel,
			APIKey: cfg.PerplexityAPIKey,
		})
	}

	if cfg.HuggingFaceAPIKey != "" {
		descriptors = append(descriptors, domain.ProviderDescriptor{
			Name:           "huggingface",
			Kind:           domain.ProviderKindHuggingFace,
			Model:          "microsoft/DialoGPT-medium",
			EmbeddingModel: "sentence-transformers/all-MiniLM-L6-v2",
			APIKey:         cfg.HuggingFaceAPIKey,
		})
	}

	for i := range descriptors {
		descriptors[i].Rank = i
	}
	return descriptors
}

// Build constructs the remote provider list from configuration.
func (f *Factory) Build(cfg config.Config) ([]driven.Provider, error) {
	descriptors := f.Describe(cfg)

	providers := make([]driven.Provider, 0, len(descriptors))
	for _, desc := range descriptors {
		provider, err := f.build(desc, cfg)
		if err != nil {
			return nil, fmt.Errorf("build provider %s: %w", desc.Name, err)
		}
		providers = append(providers, provider)
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	f.logger.Info("initialized API providers", "count", len(providers), "providers", names)

	return providers, nil
}

// BuildLocal constructs the local Ollama provider from configuration.
func (f *Factory) BuildLocal(cfg config.Config) *Ollama {
	return NewOllama(OllamaConfig{
		BaseURL:     cfg.OllamaBaseURL,
		EmbedModel:  cfg.OllamaEmbedModel,
		TextModel:   cfg.OllamaTextModel,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
}

func (f *Factory) build(desc domain.ProviderDescriptor, cfg config.Config) (driven.Provider, error) {
	switch desc.Kind {
	case domain.ProviderKindGemini:
		return NewGemini(desc, cfg.MaxTokens, cfg.Temperature)
	case domain.ProviderKindOpenAI:
		return NewOpenAI(desc, cfg.MaxTokens, cfg.Temperature)
	case domain.ProviderKindPerplexity:
		return NewPerplexity(desc, cfg.MaxTokens, cfg.Temperature)
	case domain.ProviderKindHuggingFace:
		return NewHuggingFace(desc, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown provider kind: %s", desc.Kind)
	}
}
