package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Host)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if cfg.ProviderCooldown != 5*time.Minute {
		t.Errorf("ProviderCooldown = %v, want 5m", cfg.ProviderCooldown)
	}
	if cfg.EmbedTimeout != 60*time.Second {
		t.Errorf("EmbedTimeout = %v, want 60s", cfg.EmbedTimeout)
	}
	if cfg.GenerateTimeout != 120*time.Second {
		t.Errorf("GenerateTimeout = %v, want 120s", cfg.GenerateTimeout)
	}
	if cfg.TopK != 2 {
		t.Errorf("TopK = %d, want 2", cfg.TopK)
	}
	if cfg.MaxContextChars != 2000 {
		t.Errorf("MaxContextChars = %d, want 2000", cfg.MaxContextChars)
	}
	if cfg.QuestionConcurrency != 5 {
		t.Errorf("QuestionConcurrency = %d, want 5", cfg.QuestionConcurrency)
	}
	if !cfg.CacheEnable {
		t.Error("CacheEnable = false, want true by default")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOP_K", "5")
	t.Setenv("PROVIDER_COOLDOWN_MINUTES", "10")
	t.Setenv("ENABLE_CACHE", "false")
	t.Setenv("QUERY_VOCABULARY", "sprocket,flange")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.ProviderCooldown != 10*time.Minute {
		t.Errorf("ProviderCooldown = %v, want 10m", cfg.ProviderCooldown)
	}
	if cfg.CacheEnable {
		t.Error("CacheEnable = true, want false")
	}
	if cfg.VocabularyTerms != "sprocket,flange" {
		t.Errorf("VocabularyTerms = %q, want sprocket,flange", cfg.VocabularyTerms)
	}
}

func TestLoadGeminiKeyRotation(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key-one")
	t.Setenv("GEMINI_API_KEY_2", "key-two")
	t.Setenv("GEMINI_API_KEY_3", "your_gemini_api_key_here")

	cfg := Load()

	if len(cfg.GeminiAPIKeys) != 2 {
		t.Fatalf("GeminiAPIKeys = %v, want 2 real keys", cfg.GeminiAPIKeys)
	}
	if cfg.GeminiAPIKeys[0] != "key-one" || cfg.GeminiAPIKeys[1] != "key-two" {
		t.Errorf("GeminiAPIKeys = %v, want ordered key-one, key-two", cfg.GeminiAPIKeys)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := Load()
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want default 8000 on malformed value", cfg.Port)
	}
}

func TestEffectiveChunkSettings(t *testing.T) {
	cfg := Config{ChunkSize: 1024, ChunkOverlap: 100}

	if got := cfg.EffectiveChunkSize(); got != 2048 {
		t.Errorf("EffectiveChunkSize() = %d, want 2048", got)
	}
	if got := cfg.EffectiveChunkOverlap(); got != 50 {
		t.Errorf("EffectiveChunkOverlap() = %d, want 50", got)
	}

	cfg.ChunkOverlap = 300
	if got := cfg.EffectiveChunkOverlap(); got != 150 {
		t.Errorf("EffectiveChunkOverlap() = %d, want 150", got)
	}

	cfg.ChunkOverlap = 20
	if got := cfg.EffectiveChunkOverlap(); got != 50 {
		t.Errorf("EffectiveChunkOverlap() = %d, want floor 50", got)
	}
}
