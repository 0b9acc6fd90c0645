package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/slushhq/agent-ops/config"
	"github.com/slushhq/agent-ops/internal/adapters/anthropic"
	"github.com/slushhq/agent-ops/internal/adapters/insights"
	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/data"
	"github.com/slushhq/agent-ops/internal/sandbox"
	"github.com/slushhq/agent-ops/internal/service"
)

// ServiceContainer holds all application services plus the collaborator
// adapters the job runner needs.
type ServiceContainer struct {
	Jobs *service.JobService
	Chat *service.ChatService

	// Repositories and adapters shared with the job runner.
	JobRepo     core.JobRepository
	OutputRepo  core.OutputRepository
	OutputCache core.OutputCache
	Files       core.FileLoader
	LLM         core.TextGenerator
	Snapshots   core.SnapshotFetcher
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires repositories, adapters, and domain services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return ServiceContainer{}, fmt.Errorf("config and database are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	jobRepo := data.NewJobRepo(data.JobRepoOptions{DB: deps.DB, Logger: logger})
	outputRepo := data.NewOutputRepo(deps.DB, logger)

	var cache core.OutputCache
	if deps.RedisClient != nil {
		cache = data.NewRedisOutputCache(data.RedisOutputCacheOptions{
			Client: deps.RedisClient,
			TTL:    cfg.Cache.LatestOutputTTL,
			Logger: logger,
		})
	}

	llm, err := anthropic.NewClient(anthropic.ClientOptions{Config: cfg.LLM, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire llm client: %w", err)
	}

	var snapshots core.SnapshotFetcher
	if cfg.Insights.Configured() {
		client, insErr := insights.NewClient(insights.ClientOptions{Config: cfg.Insights, Logger: logger})
		if insErr != nil {
			return ServiceContainer{}, fmt.Errorf("wire insights client: %w", insErr)
		}
		snapshots = client
	} else {
		logger.Warn("insights feed not configured; weekly memos run without business data")
	}

	files := sandbox.NewLoader(cfg.Sandbox, logger)

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Repo:    jobRepo,
		Outputs: outputRepo,
		Cache:   cache,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire job service: %w", err)
	}

	chat, err := service.NewChatService(service.ChatServiceOptions{
		Jobs:    jobRepo,
		Outputs: outputRepo,
		LLM:     llm,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire chat service: %w", err)
	}

	return ServiceContainer{
		Jobs:        jobs,
		Chat:        chat,
		JobRepo:     jobRepo,
		OutputRepo:  outputRepo,
		OutputCache: cache,
		Files:       files,
		LLM:         llm,
		Snapshots:   snapshots,
	}, nil
}
