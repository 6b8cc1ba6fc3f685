// Package api provides the HTTP API for the GreenB Ops dashboard.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/greenbops/greenbops/internal/api/handler"
	"github.com/greenbops/greenbops/internal/api/middleware"
	"github.com/greenbops/greenbops/internal/billing"
	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/history"
	"github.com/greenbops/greenbops/internal/identity"
	"github.com/greenbops/greenbops/internal/pickup"
	"github.com/greenbops/greenbops/internal/provider/resilience"
	"github.com/greenbops/greenbops/internal/rtdb"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	Store           rtdb.Store
	Registry        *resilience.Registry
	TokenService    *identity.TokenService
	Resolver        *identity.Resolver
	IdentityService *identity.Service
	Gateway         *bin.Gateway
	History         history.Repository
	BillingService  *billing.Service
	PickupService   *pickup.Service
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "greenbops-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Store, cfg.Registry)
	authHandler := handler.NewAuthHandler(cfg.IdentityService)
	routeHandler := handler.NewRouteHandler(cfg.TokenService, cfg.Resolver)
	deviceHandler := handler.NewDeviceHandler(cfg.Gateway)
	alertHandler := handler.NewAlertHandler(cfg.Gateway)
	dashboardHandler := handler.NewDashboardHandler(cfg.Gateway, cfg.History)
	mapHandler := handler.NewMapHandler(cfg.Gateway)
	billingHandler := handler.NewBillingHandler(cfg.BillingService)
	pickupHandler := handler.NewPickupHandler(cfg.PickupService)
	adminHandler := handler.NewAdminHandler(cfg.Store, cfg.Gateway, cfg.PickupService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.TokenService, cfg.Resolver)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			// session requires authentication
			r.With(authMiddleware).Get("/session", authHandler.Session)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Route guard (public, token optional) - standard rate limiting
		r.With(standardRateLimit).Get("/route", routeHandler.Decide)

		// Everything below requires an authenticated session
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user

			// Devices
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", deviceHandler.ListDevices)
				r.Post("/", deviceHandler.CreateDevice)
				r.Get("/stream", deviceHandler.StreamDevices)
				r.Route("/{deviceId}", func(r chi.Router) {
					r.Get("/", deviceHandler.GetDevice)
					r.Delete("/", deviceHandler.DeleteDevice)
				})
			})

			// Alerts
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.ListAlerts)
				r.Get("/stats", alertHandler.AlertStats)
				r.Get("/stream", alertHandler.StreamAlerts)
				r.Post("/{alertId}/ack", alertHandler.AcknowledgeAlert)
			})

			// Dashboard aggregates hit the fill history - expensive tier
			r.With(expensiveRateLimit).Get("/dashboard", dashboardHandler.Overview)

			// Fleet map (plan-gated)
			r.Get("/map", mapHandler.FleetMap)

			// Billing
			r.Route("/billing", func(r chi.Router) {
				r.Get("/plans", billingHandler.ListPlans)
				r.Post("/activate", billingHandler.Activate)
			})

			// Emergency pickups
			r.Route("/pickups", func(r chi.Router) {
				r.Post("/", pickupHandler.CreateRequest)
				r.With(middleware.RequireAdmin).Get("/", pickupHandler.ListRequests)
				r.With(middleware.RequireAdmin).Post("/{requestId}/resolve", pickupHandler.ResolveRequest)
			})

			// Admin console
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/overview", adminHandler.Overview)
			})
		})
	})

	return r
}
