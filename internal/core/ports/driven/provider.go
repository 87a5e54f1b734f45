package driven

import (
	"context"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
)

// Provider is a named backend implementing one or more AI capabilities.
// Adapters are thin wrappers over vendor transports; the gateway treats
// them as opaque "embed(texts) -> vectors" / "generate(prompt) -> text"
// capabilities.
type Provider interface {
	// Name returns the stable provider identity (e.g. "gemini_1")
	Name() string

	// Kind returns the backend family
	Kind() domain.ProviderKind

	// Supports reports whether the provider implements a capability
	Supports(capability domain.Capability) bool

	// Embed generates embeddings for multiple texts.
	// Returned vectors are raw (not normalised); the vector store owns
	// normalisation.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Generate produces an answer for a question constrained to the
	// supplied context.
	Generate(ctx context.Context, question string, context string) (string, error)
}

// LocalProvider is a provider running on the same host (Ollama). It is
// free and unbounded, so the gateway tries it before any remote provider.
type LocalProvider interface {
	Provider

	// Available probes the local runtime and reports whether both the
	// embedding and generation models can serve requests.
	Available(ctx context.Context) bool
}
