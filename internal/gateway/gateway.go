package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Gateway routes embedding and generation calls through an ordered list
// of providers, failing over on error. A designated local provider is
// tried before the remote list; remote candidates are picked starting at
// a rotating cursor so a dead provider is not re-selected first on every
// call. Rate-limited providers sit out a cooldown window.
//
// The cursor and cooldown table are shared across all concurrent callers
// and protected by the mutex; provider calls themselves happen outside
// the lock so one slow backend does not serialise the whole process.
type Gateway struct {
	mu        sync.Mutex
	providers []driven.Provider
	local     driven.LocalProvider
	cursor    int
	cooldowns map[string]time.Time

	cooldown        time.Duration
	embedTimeout    time.Duration
	generateTimeout time.Duration

	now    func() time.Time
	logger *slog.Logger
}

// Config holds gateway configuration.
type Config struct {
	// Providers is the ordered remote fallback list
	Providers []driven.Provider

	// Local is the privileged local provider, tried first (may be nil)
	Local driven.LocalProvider

	// Cooldown is how long a rate-limited provider is skipped
	Cooldown time.Duration

	// EmbedTimeout bounds a single embedding call
	EmbedTimeout time.Duration

	// GenerateTimeout bounds a single generation call
	GenerateTimeout time.Duration

	Logger *slog.Logger
}

// New creates a Gateway.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 5 * time.Minute
	}

	embedTimeout := cfg.EmbedTimeout
	if embedTimeout <= 0 {
		embedTimeout = 60 * time.Second
	}

	generateTimeout := cfg.GenerateTimeout
	if generateTimeout <= 0 {
		generateTimeout = 120 * time.Second
	}

	return &Gateway{
		providers:       cfg.Providers,
		local:           cfg.Local,
		cooldowns:       make(map[string]time.Time),
		cooldown:        cooldown,
		embedTimeout:    embedTimeout,
		generateTimeout: generateTimeout,
		now:             time.Now,
		logger:          logger,
	}
}

// Embed generates embeddings for texts through the fallback chain.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var result [][]float32
	err := g.dispatch(ctx, domain.CapabilityEmbed, func(ctx context.Context, p driven.Provider) error {
		vectors, err := p.Embed(ctx, texts)
		if err != nil {
			return err
		}
		result = vectors
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Generate produces an answer through the fallback chain.
func (g *Gateway) Generate(ctx context.Context, question, docContext string) (string, error) {
	var result string
	err := g.dispatch(ctx, domain.CapabilityGenerate, func(ctx context.Context, p driven.Provider) error {
		answer, err := p.Generate(ctx, question, docContext)
		if err != nil {
			return err
		}
		result = answer
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// dispatch tries the local provider, then iterates the remote list from
// the rotation cursor. Individual provider errors are logged and
// swallowed; only exhaustion of the full candidate list surfaces.
func (g *Gateway) dispatch(ctx context.Context, capability domain.Capability, call func(context.Context, driven.Provider) error) error {
	if g.local != nil && g.local.Supports(capability) && g.local.Available(ctx) {
		g.logger.Info("trying local provider", "provider", g.local.Name(), "capability", capability)
		err := g.invoke(ctx, g.local, capability, call)
		if err == nil {
			return nil
		}
		g.logger.Warn("local provider failed, falling back to remote providers",
			"provider", g.local.Name(), "error", err)
	}

	if len(g.providers) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNoProviders, capability)
	}

	for attempt := 0; attempt < len(g.providers); attempt++ {
		provider, ok := g.nextCandidate(capability)
		if !ok {
			continue
		}

		g.logger.Info("dispatching to provider", "provider", provider.Name(), "capability", capability)
		err := g.invoke(ctx, provider, capability, call)
		if err == nil {
			return nil
		}

		if IsRateLimited(err) {
			g.setCooldown(provider)
			g.logger.Warn("rate limit hit", "provider", provider.Name(), "error", err)
		} else {
			g.logger.Error("provider call failed", "provider", provider.Name(), "error", err)
		}
		g.advance()
	}

	return fmt.Errorf("%w: %s", domain.ErrAllProvidersFailed, capability)
}

// nextCandidate returns the provider under the cursor when it is usable.
// A cooled-down or incapable provider advances the cursor and consumes
// the attempt, matching the rotation discipline of the fallback loop.
func (g *Gateway) nextCandidate(capability domain.Capability) (driven.Provider, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	provider := g.providers[g.cursor]

	if expiry, ok := g.cooldowns[provider.Name()]; ok {
		if g.now().Before(expiry) {
			g.logger.Info("provider in cooldown, trying next", "provider", provider.Name())
			g.cursor = (g.cursor + 1) % len(g.providers)
			return nil, false
		}
		// Lazily evict the expired entry
		delete(g.cooldowns, provider.Name())
	}

	if !provider.Supports(capability) {
		g.logger.Info("provider lacks capability, trying next",
			"provider", provider.Name(), "capability", capability)
		g.cursor = (g.cursor + 1) % len(g.providers)
		return nil, false
	}

	return provider, true
}

// invoke runs one capability call under its timeout.
func (g *Gateway) invoke(ctx context.Context, provider driven.Provider, capability domain.Capability, call func(context.Context, driven.Provider) error) error {
	timeout := g.generateTimeout
	if capability == domain.CapabilityEmbed {
		timeout = g.embedTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return call(callCtx, provider)
}

// advance moves the cursor past the provider that was just attempted.
// On success the cursor stays put, so a healthy provider keeps absorbing
// traffic until it fails.
func (g *Gateway) advance() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor = (g.cursor + 1) % len(g.providers)
}

func (g *Gateway) setCooldown(provider driven.Provider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cooldowns[provider.Name()] = g.now().Add(g.cooldown)
}

// Status reports the registry and cooldown state, for the health surface.
func (g *Gateway) Status() []domain.ProviderStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	statuses := make([]domain.ProviderStatus, 0, len(g.providers)+1)
	if g.local != nil {
		statuses = append(statuses, domain.ProviderStatus{
			Name: g.local.Name(),
			Kind: string(g.local.Kind()),
		})
	}
	now := g.now()
	for _, p := range g.providers {
		expiry, cooling := g.cooldowns[p.Name()]
		statuses = append(statuses, domain.ProviderStatus{
			Name:       p.Name(),
			Kind:       string(p.Kind()),
			InCooldown: cooling && now.Before(expiry),
		})
	}
	return statuses
}

// SetClock overrides the time source. Test hook.
func (g *Gateway) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}
