package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/slushhq/agent-ops/config"
	"github.com/slushhq/agent-ops/internal/adapters/jobrunner"
)

// ServiceOrchestrationConfig groups dependencies for RunServicesWithShutdown.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service
// fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, len(enabled)+1)

	var httpServer *http.Server
	if enabled[config.ServiceModeHTTP] {
		httpServer = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
	}

	if enabled[config.ServiceModeRunner] {
		runner, runnerErr := jobrunner.NewRunner(jobrunner.RunnerOptions{
			Config:      cfg.Config.Runner,
			Logger:      logger,
			Files:       cfg.Services.Files,
			LLM:         cfg.Services.LLM,
			Snapshots:   cfg.Services.Snapshots,
			JobsRepo:    cfg.Services.JobRepo,
			OutputsRepo: cfg.Services.OutputRepo,
			Cache:       cfg.Services.OutputCache,
		})
		if runnerErr != nil {
			return fmt.Errorf("wire job runner: %w", runnerErr)
		}
		go func() {
			if runErr := runner.Run(serviceCtx); runErr != nil && !errors.Is(runErr, context.Canceled) {
				errCh <- fmt.Errorf("job runner: %w", runErr)
			}
		}()
	}

	return waitForShutdown(shutdownDeps{
		cancel:     cancel,
		errCh:      errCh,
		httpServer: httpServer,
		logger:     logger,
	})
}

type shutdownDeps struct {
	cancel     context.CancelFunc
	errCh      <-chan error
	httpServer *http.Server
	logger     *slog.Logger
}

// waitForShutdown waits for a shutdown signal or a service error, then stops
// everything.
func waitForShutdown(deps shutdownDeps) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		deps.logger.Info("shutting down services...")
		deps.cancel()
		return ShutdownHTTPServer(context.Background(), deps.httpServer, deps.logger)
	case err := <-deps.errCh:
		deps.logger.Error("service error", "error", err)
		deps.cancel()
		if stopErr := ShutdownHTTPServer(context.Background(), deps.httpServer, deps.logger); stopErr != nil {
			deps.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}
