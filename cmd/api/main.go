// Package main provides the entrypoint for the CampusNav API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/internal/api"
	"github.com/campusnav/campusnav/internal/api/handler"
	"github.com/campusnav/campusnav/internal/campus"
	"github.com/campusnav/campusnav/internal/config"
	"github.com/campusnav/campusnav/internal/directions"
	"github.com/campusnav/campusnav/internal/directions/google"
	"github.com/campusnav/campusnav/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "campusnav-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CampusNav API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Load the campus dataset and index its buildings
	campuses, err := campus.LoadDataset(cfg.CampusDataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.CampusDataDir).Msg("failed to load campus dataset")
	}
	buildingCount := 0
	for _, c := range campuses {
		buildingCount += len(c.Buildings)
	}
	log.Info().
		Int("campuses", len(campuses)).
		Int("buildings", buildingCount).
		Msg("campus dataset loaded")

	locator := campus.NewLocator(campuses, log)

	// Initialize the directions provider when configured
	var provider directions.Provider
	var providerInfo handler.ProviderInfo
	if cfg.GoogleMapsAPIKey != "" {
		client, err := google.NewClient(google.Config{
			APIKey: cfg.GoogleMapsAPIKey,
			Logger: log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create directions provider")
		}
		provider = client
		providerInfo = client
		log.Info().Str("provider", client.Name()).Msg("directions provider initialized")
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - route computation disabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Campuses:     campuses,
		Locator:      locator,
		Provider:     provider,
		ProviderInfo: providerInfo,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
