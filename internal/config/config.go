package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration, loaded from environment
// variables. A .env file is loaded by main before this runs.
type Config struct {
	// HTTP
	Host string
	Port int

	// Auth
	APIToken  string // Static bearer credential for the run endpoint
	JWTSecret string

	// CORS (comma-separated; "*" allows any origin)
	AllowedOrigins []string

	// Provider credentials. Up to three Gemini keys rotate through the
	// fallback order before the other remote providers.
	GeminiAPIKeys  []string
	GeminiModel    string
	GeminiEmbedModel string

	OpenAIAPIKey string
	OpenAIModel  string

	PerplexityAPIKey string
	PerplexityModel  string

	HuggingFaceAPIKey string

	// Local provider (Ollama)
	OllamaBaseURL    string
	OllamaEmbedModel string
	OllamaTextModel  string

	// Generation
	MaxTokens   int
	Temperature float64

	// Gateway
	ProviderCooldown time.Duration
	EmbedTimeout     time.Duration
	GenerateTimeout  time.Duration

	// Retrieval
	TopK            int
	MaxContextChars int

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Persistence
	IndexPath   string // File snapshot path (fixed key)
	DatabaseURL string // When set, snapshots go to postgres instead

	// Answer cache
	RedisURL    string
	CacheEnable bool
	CacheTTL    time.Duration

	// Question processing
	QuestionConcurrency int

	// Query expansion vocabulary (comma-separated override)
	VocabularyTerms string
}

// Load reads configuration from the environment with defaults.
func Load() Config {
	cfg := Config{
		Host:      getEnv("HOST", "0.0.0.0"),
		Port:      getEnvInt("PORT", 8000),
		APIToken:  getEnv("API_BEARER_TOKEN", ""),
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiEmbedModel: getEnv("GEMINI_EMBEDDING_MODEL", "models/embedding-001"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),

		PerplexityAPIKey: getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityModel:  getEnv("PERPLEXITY_MODEL", "sonar-large-chat"),

		HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),

		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaEmbedModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		OllamaTextModel:  getEnv("OLLAMA_TEXT_MODEL", "llama3.2:3b"),

		MaxTokens:   getEnvInt("MAX_TOKENS", 4000),
		Temperature: getEnvFloat("TEMPERATURE", 0.1),

		ProviderCooldown: time.Duration(getEnvInt("PROVIDER_COOLDOWN_MINUTES", 5)) * time.Minute,
		EmbedTimeout:     time.Duration(getEnvInt("EMBED_TIMEOUT_SEC", 60)) * time.Second,
		GenerateTimeout:  time.Duration(getEnvInt("GENERATE_TIMEOUT_SEC", 120)) * time.Second,

		TopK:            getEnvInt("TOP_K", 2),
		MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", 2000),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1024),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 100),

		IndexPath:   getEnv("INDEX_PATH", "./data/index.snapshot"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		CacheEnable: getEnvBool("ENABLE_CACHE", true),
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL", 3600)) * time.Second,

		QuestionConcurrency: getEnvInt("QUESTION_CONCURRENCY", 5),

		VocabularyTerms: getEnv("QUERY_VOCABULARY", ""),
	}

	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	for _, key := range []string{"GEMINI_API_KEY", "GEMINI_API_KEY_2", "GEMINI_API_KEY_3"} {
		if v := getEnv(key, ""); v != "" && v != "your_gemini_api_key_here" {
			cfg.GeminiAPIKeys = append(cfg.GeminiAPIKeys, v)
		}
	}

	return cfg
}

// EffectiveChunkSize returns the chunk size the pipeline actually uses.
// Larger chunks mean fewer embedding calls, so the configured size is
// doubled and the overlap halved (floor 50).
func (c Config) EffectiveChunkSize() int {
	return c.ChunkSize * 2
}

// EffectiveChunkOverlap returns the overlap paired with EffectiveChunkSize.
func (c Config) EffectiveChunkOverlap() int {
	overlap := c.ChunkOverlap / 2
	if overlap < 50 {
		overlap = 50
	}
	return overlap
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
