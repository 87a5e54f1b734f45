package domain

// Capability is an operation a provider can perform.
type Capability string

const (
	CapabilityEmbed    Capability = "embed"
	CapabilityGenerate Capability = "generate"
)

// ProviderKind identifies the backend family a provider descriptor maps to.
type ProviderKind string

const (
	ProviderKindGemini      ProviderKind = "gemini"
	ProviderKindOpenAI      ProviderKind = "openai"
	ProviderKindPerplexity  ProviderKind = "perplexity"
	ProviderKindHuggingFace ProviderKind = "huggingface"
	ProviderKindOllama      ProviderKind = "ollama"
)

// ProviderDescriptor describes one configured backend. Immutable after
// registry construction.
type ProviderDescriptor struct {
	Name           string       `json:"name"` // Stable identity, e.g. "gemini_1"
	Kind           ProviderKind `json:"kind"`
	Model          string       `json:"model"`
	EmbeddingModel string       `json:"embedding_model,omitempty"`
	APIKey         string       `json:"-"` // Never serialize
	BaseURL        string       `json:"base_url,omitempty"`
	Rank           int          `json:"rank"` // Position in the fallback order
}

// Capabilities returns the capability set implied by the descriptor.
// Perplexity offers no embedding API; everything else does both.
func (d ProviderDescriptor) Capabilities() []Capability {
	if d.Kind == ProviderKindPerplexity {
		return []Capability{CapabilityGenerate}
	}
	return []Capability{CapabilityEmbed, CapabilityGenerate}
}

// ProviderStatus reports gateway-side state for one provider.
type ProviderStatus struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	InCooldown bool   `json:"in_cooldown"`
}
