// Package bootstrap handles application initialization and lifecycle
// management: config, logger, cache backend, the analysis pipeline, and
// the HTTP server, wired in that order.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/projectintel/internal/api"
	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/config"
	"github.com/jonesrussell/projectintel/internal/discovery"
	"github.com/jonesrussell/projectintel/internal/events"
	"github.com/jonesrussell/projectintel/internal/intel"
	"github.com/jonesrussell/projectintel/internal/logger"
)

// Start initializes and runs the projectintel service until it is
// signalled to stop.
func Start(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting projectintel",
		logger.String("host", cfg.Server.Host),
		logger.Int("port", cfg.Server.Port),
		logger.Bool("debug", cfg.Debug),
	)

	client := setupRedis(cfg, log)
	if client != nil {
		defer func() { _ = client.Close() }()
	}
	store := cache.New(client, log)

	service := buildService(cfg, store, log)
	service.SetPublisher(events.NewPublisher(client, log))

	handler := api.NewHandler(service, discovery.NewPageMetaExtractor(log), log)
	server := api.NewServer(cfg, handler, log)

	return run(server, log)
}

// setupRedis connects the durable cache tier. Failure is not fatal; the
// store runs on its in-memory fallback for the process lifetime.
func setupRedis(cfg *config.Config, log logger.Logger) *redis.Client {
	client, err := cache.NewRedisClient(cache.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, cache runs in memory only",
			logger.String("address", cfg.Redis.Address),
			logger.Error(err),
		)
		return nil
	}
	log.Info("Redis connected", logger.String("address", cfg.Redis.Address))
	return client
}

// run serves until SIGINT/SIGTERM, then drains.
func run(server *api.Server, log logger.Logger) error {
	errCh := server.StartAsync()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}
	log.Info("projectintel stopped")
	return nil
}

// NewAnalysisService builds the full pipeline for one-shot use outside the
// HTTP server.
func NewAnalysisService(cfg *config.Config, log logger.Logger) (*intel.Service, func()) {
	client := setupRedis(cfg, log)
	store := cache.New(client, log)

	service := buildService(cfg, store, log)
	service.SetPublisher(events.NewPublisher(client, log))

	cleanup := func() {
		if client != nil {
			_ = client.Close()
		}
	}
	return service, cleanup
}
