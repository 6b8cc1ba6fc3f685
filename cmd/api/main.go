// Package main provides the entrypoint for the GreenB Ops API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenbops/greenbops/internal/api"
	"github.com/greenbops/greenbops/internal/api/middleware"
	"github.com/greenbops/greenbops/internal/billing"
	"github.com/greenbops/greenbops/internal/billing/paystack"
	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/config"
	"github.com/greenbops/greenbops/internal/database"
	"github.com/greenbops/greenbops/internal/history"
	"github.com/greenbops/greenbops/internal/identity"
	"github.com/greenbops/greenbops/internal/pickup"
	"github.com/greenbops/greenbops/internal/provider/resilience"
	"github.com/greenbops/greenbops/internal/rtdb"
	"github.com/greenbops/greenbops/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "greenbops-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting GreenB Ops API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
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

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Realtime database
	remote, err := config.RemoteFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid remote configuration")
	}
	if remote.UsedFallback() {
		log.Warn().Msg("using demo realtime database credentials - not for production")
	}

	store := rtdb.NewClient(rtdb.ClientConfig{
		BaseURL:   remote.DatabaseURL,
		AuthToken: remote.APIKey,
	})
	log.Info().Str("project", remote.ProjectID).Msg("realtime database client initialized")

	// Connect to database for the fill history
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize token service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	tokenService := identity.NewTokenService(identity.TokenConfig{
		SigningKey: jwtSigningKey,
		Issuer:     "https://api.greenbops.io",
		Audience:   "greenbops-dashboard",
	})

	// Identity provider, session resolver and service
	provider := identity.NewProvider(identity.ProviderConfig{APIKey: remote.APIKey})
	resolver := identity.NewResolver(identity.ResolverConfig{Store: store, Logger: log})
	defer resolver.Close()

	identityService := identity.NewService(identity.ServiceConfig{
		Accounts: provider,
		Tokens:   tokenService,
		Store:    store,
		Logger:   log,
	})
	log.Info().Msg("identity service initialized")

	// Device gateway and fill history
	gateway := bin.NewGateway(bin.GatewayConfig{Store: store})
	historyRepo := history.NewPostgresRepository(pool)

	// Billing with a registered payment provider client
	paystackHTTP := resilience.NewClient(resilience.DefaultClientConfig("paystack"))
	resilience.GlobalRegistry.Register("paystack", paystackHTTP)

	billingService := billing.NewService(billing.ServiceConfig{
		Store: store,
		Verifier: paystack.NewClient(paystack.ClientConfig{
			SecretKey:  os.Getenv("PAYSTACK_SECRET_KEY"),
			HTTPClient: paystackHTTP,
		}),
		Logger: log,
	})
	log.Info().Msg("billing service initialized")

	pickupService := pickup.NewService(pickup.ServiceConfig{Store: store, Logger: log})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		Store:           store,
		Registry:        resilience.GlobalRegistry,
		TokenService:    tokenService,
		Resolver:        resolver,
		IdentityService: identityService,
		Gateway:         gateway,
		History:         historyRepo,
		BillingService:  billingService,
		PickupService:   pickupService,
	})

	// Create HTTP server
	// WriteTimeout stays unset: the stream endpoints hold their
	// response open for the life of the subscription.
	server := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
