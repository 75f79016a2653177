package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fleetshare/coverage-engine/internal/adapters/cache"
	"github.com/fleetshare/coverage-engine/internal/adapters/database"
	"github.com/fleetshare/coverage-engine/internal/adapters/events"
	"github.com/fleetshare/coverage-engine/internal/api/handlers"
	"github.com/fleetshare/coverage-engine/internal/api/routes"
	"github.com/fleetshare/coverage-engine/internal/application/services"
	"github.com/fleetshare/coverage-engine/internal/domain/providers"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/postgres"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/redis"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/observability"
	"github.com/fleetshare/coverage-engine/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis is optional: without it the catalog is read uncached and
	// notifications are stored but not pushed live
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache and live notifications")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	providerStore := database.NewProviderAdapter(pgClient)
	var catalogReads repositories.ProviderRepository = providerStore
	var publisher providers.EventPublisher
	if redisClient != nil {
		catalogReads = database.NewCachedProviderAdapter(providerStore, cache.NewRedisAdapter(redisClient), cfg.Engine.CatalogCacheTTL)
		publisher = events.NewRedisEventBus(redisClient)
	}
	fleetRepo := database.NewFleetAdapter(pgClient)

	scanner := services.NewGapScannerService(catalogReads, fleetRepo, cfg.Engine)
	scanner.SetMetrics(metrics)

	coverage := services.NewFleetCoverageService(catalogReads, fleetRepo)

	// the toggle validates providers against the store, never the cache
	toggle := services.NewTierToggleService(
		database.NewOperatorAdapter(pgClient),
		providerStore,
		database.NewBookingLockAdapter(pgClient),
		database.NewAuditAdapter(pgClient),
		database.NewNotificationAdapter(pgClient, publisher),
	)
	toggle.SetMetrics(metrics)

	router := routes.NewRouter(
		handlers.NewCoverageHandler(coverage),
		handlers.NewGapReportHandler(scanner),
		handlers.NewTierToggleHandler(toggle),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event publisher")
		}
	}

	log.Info().Msg("server stopped")
}
