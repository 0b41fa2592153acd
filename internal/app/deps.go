package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"feedback-insights/internal/cache"
	"feedback-insights/internal/config"
	"feedback-insights/internal/embeddings"
	"feedback-insights/internal/llm"
	"feedback-insights/internal/logger"
	"feedback-insights/internal/queue"
	"feedback-insights/internal/store"
)

// GatewayDeps bundles runtime dependencies for the gateway service.
type GatewayDeps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Queue    queue.Queue
	Cache    cache.Cache
	Embedder embeddings.Embedder
}

// WorkerDeps bundles runtime dependencies for the insights worker.
type WorkerDeps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Queue    queue.Queue
	Cache    cache.Cache
	Embedder embeddings.Embedder
	LLM      llm.Client
}

// PipelineDeps bundles runtime dependencies for the one-shot CLI.
type PipelineDeps struct {
	Config   config.Config
	Log      *slog.Logger
	Embedder embeddings.Embedder
	LLM      llm.Client
}

// BuildGateway loads env, config, and the gateway's components.
func BuildGateway() (GatewayDeps, error) {
	cfg, log := loadBase()

	st, err := buildStore(cfg, log)
	if err != nil {
		return GatewayDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return GatewayDeps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return GatewayDeps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return GatewayDeps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Queue:    q,
		Cache:    buildCache(cfg, log),
		Embedder: embedder,
	}, nil
}

// BuildWorker loads env, config, and the insights worker's components.
func BuildWorker() (WorkerDeps, error) {
	cfg, log := loadBase()

	st, err := buildStore(cfg, log)
	if err != nil {
		return WorkerDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return WorkerDeps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return WorkerDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return WorkerDeps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return WorkerDeps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Queue:    q,
		Cache:    buildCache(cfg, log),
		Embedder: embedder,
		LLM:      llmClient,
	}, nil
}

// BuildPipeline loads env, config, and the CLI's components. The CLI
// talks only to the model service and the local filesystem.
func BuildPipeline() (PipelineDeps, error) {
	cfg, log := loadBase()

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return PipelineDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return PipelineDeps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return PipelineDeps{
		Config:   cfg,
		Log:      log,
		Embedder: embedder,
		LLM:      llmClient,
	}, nil
}

func loadBase() (config.Config, *slog.Logger) {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel)
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

// buildCache falls back to a no-op cache rather than failing the service;
// caching is an optimization, not a dependency.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "err", err)
			return cache.NewNoOpCache()
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr)
		return c
	default:
		log.Info("caching disabled")
		return cache.NewNoOpCache()
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
		return embedder, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}
