package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/fleetshare/coverage-engine/internal/adapters/database"
	"github.com/fleetshare/coverage-engine/internal/application/services"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/postgres"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/observability"
	"github.com/fleetshare/coverage-engine/pkg/config"
)

// scan runs a single fleet coverage scan and writes the gap report to stdout.
func main() {
	var includeInactive bool
	var failOnGaps bool
	flag.BoolVar(&includeInactive, "include-inactive", false, "include vehicles that are not currently listed")
	flag.BoolVar(&failOnGaps, "fail-on-gaps", false, "exit with status 2 when the report contains any gap")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-scan", cfg.Env)
	// stdout carries the report
	log.Logger = log.Output(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	scanner := services.NewGapScannerService(
		database.NewProviderAdapter(pgClient),
		database.NewFleetAdapter(pgClient),
		cfg.Engine,
	)

	report, err := scanner.ScanFleet(ctx, services.ScanScope{IncludeInactiveVehicles: includeInactive})
	if err != nil {
		log.Error().Err(err).Msg("fleet scan failed")
		pgClient.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error().Err(err).Msg("failed to write report")
		pgClient.Close()
		os.Exit(1)
	}

	if failOnGaps && report.Summary.TotalGaps > 0 {
		pgClient.Close()
		os.Exit(2)
	}
}
