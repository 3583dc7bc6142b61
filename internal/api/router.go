// Package api provides the HTTP API for CampusNav.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/internal/api/handler"
	"github.com/campusnav/campusnav/internal/api/middleware"
	"github.com/campusnav/campusnav/internal/campus"
	"github.com/campusnav/campusnav/internal/directions"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string

	// Campuses is the loaded campus dataset; Locator indexes its buildings.
	Campuses []campus.Campus
	Locator  *campus.Locator

	// Provider computes routes. Nil disables /v1/routes:compute.
	Provider directions.Provider

	// ProviderInfo reports provider circuit state for /v1/ops/status. May be
	// nil; typically the same value as Provider.
	ProviderInfo handler.ProviderInfo
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "campusnav-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderInfo)
	campusHandler := handler.NewCampusHandler(cfg.Campuses, cfg.Locator)
	routeHandler := handler.NewRouteHandler(cfg.Provider, cfg.Logger)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Campus dataset endpoints - standard rate limiting
		r.With(standardRateLimit).Get("/campuses", campusHandler.ListCampuses)
		r.With(standardRateLimit).Get("/buildings/locate", campusHandler.LocateBuilding)

		// Routes endpoint - calls the external provider, strict rate limiting
		r.With(expensiveRateLimit, middleware.RequireJSON).Post("/routes:compute", routeHandler.ComputeRoute)
	})

	return r
}
