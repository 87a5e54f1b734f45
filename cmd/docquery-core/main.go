package main

// @title           DocQuery Core API
// @version         1.0
// @description     Document question-answering API. Downloads a remote PDF/DOCX, indexes it, and answers natural-language questions with a multi-provider LLM fallback.

// @contact.name   Custodia OSS
// @contact.url    https://github.com/custodia-labs/docquery-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/custodia-labs/docquery-core/docs"
	"github.com/custodia-labs/docquery-core/internal/adapters/driven/ai"
	"github.com/custodia-labs/docquery-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/docquery-core/internal/adapters/driven/fetch"
	"github.com/custodia-labs/docquery-core/internal/adapters/driven/file"
	"github.com/custodia-labs/docquery-core/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/docquery-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/docquery-core/internal/adapters/driving/http"
	"github.com/custodia-labs/docquery-core/internal/config"
	"github.com/custodia-labs/docquery-core/internal/core/domain"
	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
	"github.com/custodia-labs/docquery-core/internal/core/services"
	"github.com/custodia-labs/docquery-core/internal/gateway"
	"github.com/custodia-labs/docquery-core/internal/keywords"
	"github.com/custodia-labs/docquery-core/internal/normalisers"
	"github.com/custodia-labs/docquery-core/internal/postprocessors"
	"github.com/custodia-labs/docquery-core/internal/vectorstore"
)

var version = "dev"

func main() {
	// .env is optional; real deployments configure the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()
	logger := slog.Default()

	log.Printf("docquery-core %s starting on %s:%d", version, cfg.Host, cfg.Port)

	ctx := context.Background()

	// ===== Providers =====
	factory := ai.NewFactory(logger)
	providers, err := factory.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build providers: %v", err)
	}
	local := factory.BuildLocal(cfg)

	gw := gateway.New(gateway.Config{
		Providers:       providers,
		Local:           local,
		Cooldown:        cfg.ProviderCooldown,
		EmbedTimeout:    cfg.EmbedTimeout,
		GenerateTimeout: cfg.GenerateTimeout,
		Logger:          logger,
	})

	// ===== Snapshot store (Postgres if configured, otherwise file) =====
	var snapshots driven.SnapshotStore
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		snapshots = postgres.NewSnapshotStore(db)
		log.Println("Using PostgreSQL snapshot store")
	} else {
		snapshots = file.NewSnapshotStore(cfg.IndexPath)
		log.Printf("Using file snapshot store at %s", cfg.IndexPath)
	}

	store := vectorstore.New(gw, snapshots, logger)
	store.Restore(ctx)

	// ===== Answer cache (optional) =====
	var answerCache driven.AnswerCache
	if cfg.CacheEnable && cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		answerCache = redisadapter.NewAnswerCache(redisClient)
		log.Println("Using Redis answer cache")
	}

	// ===== Direct fallback provider (first Gemini key) =====
	var directFallback driven.Provider
	for _, desc := range factory.Describe(cfg) {
		if desc.Kind == domain.ProviderKindGemini {
			directFallback, err = ai.NewGemini(desc, cfg.MaxTokens, cfg.Temperature)
			if err != nil {
				log.Fatalf("Failed to build fallback provider: %v", err)
			}
			break
		}
	}

	// ===== Core services =====
	expander := keywords.NewVocabularyExpander(keywords.ParseTerms(cfg.VocabularyTerms))
	pipeline := postprocessors.DefaultPipeline(cfg.EffectiveChunkSize(), cfg.EffectiveChunkOverlap())

	queryService := services.NewQueryService(store, gw, directFallback, expander, pipeline,
		services.QueryConfig{
			TopK:            cfg.TopK,
			MaxContextChars: cfg.MaxContextChars,
		}, logger)

	runService := services.NewRunService(
		fetch.NewHTTPFetcher(),
		normalisers.DefaultRegistry(),
		queryService,
		answerCache,
		services.RunConfig{
			Concurrency: cfg.QuestionConcurrency,
			CacheTTL:    cfg.CacheTTL,
		}, logger)

	// ===== HTTP server =====
	authAdapter := auth.NewAdapter(cfg.JWTSecret)

	server := http.NewServer(http.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		APIToken:       cfg.APIToken,
		AllowedOrigins: cfg.AllowedOrigins,
	}, runService, authAdapter, gw, store)

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
