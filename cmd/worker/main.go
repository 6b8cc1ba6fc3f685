// Package main provides the entrypoint for the GreenB Ops telemetry worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/config"
	"github.com/greenbops/greenbops/internal/database"
	"github.com/greenbops/greenbops/internal/history"
	"github.com/greenbops/greenbops/internal/ingest"
	"github.com/greenbops/greenbops/internal/notify"
	"github.com/greenbops/greenbops/internal/provider/resilience"
	"github.com/greenbops/greenbops/internal/rtdb"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "greenbops-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting GreenB Ops worker")

	// Worker also exposes a health endpoint for the container platform
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// Connect to database for the fill history
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Alert notifications go out through the resilient client
	notifyHTTP := resilience.NewClient(resilience.DefaultClientConfig("notify-webhook"))
	resilience.GlobalRegistry.Register("notify-webhook", notifyHTTP)

	webhookURL := os.Getenv("ALERT_WEBHOOK_URL")
	if webhookURL == "" {
		log.Warn().Msg("ALERT_WEBHOOK_URL not set - alert notifications disabled")
	}

	pipeline := ingest.NewPipeline(ingest.PipelineConfig{
		Gateway: bin.NewGateway(bin.GatewayConfig{Store: store}),
		History: history.NewPostgresRepository(pool),
		Notifier: notify.NewSender(notify.SenderConfig{
			WebhookURL: webhookURL,
			HTTPClient: notifyHTTP,
			Logger:     log,
		}),
		Logger: log,
	})

	// Pub/Sub source
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if subscription != "" {
		handler, err := ingest.NewPubSubHandler(ctx, ingest.PubSubConfig{
			ProjectID:        remote.ProjectID,
			SubscriptionName: subscription,
			Pipeline:         pipeline,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
				cancel()
			}
		}()
	} else {
		log.Warn().Msg("PUBSUB_SUBSCRIPTION not set - pubsub source disabled")
	}

	// MQTT source
	brokerURL := os.Getenv("MQTT_BROKER_URL")
	if brokerURL != "" {
		source := ingest.NewMQTTSource(ingest.MQTTConfig{
			BrokerURL: brokerURL,
			ClientID:  serviceName,
			Username:  os.Getenv("MQTT_USERNAME"),
			Password:  os.Getenv("MQTT_PASSWORD"),
			Pipeline:  pipeline,
			Logger:    log,
		})
		if err := source.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect mqtt source")
		}
		defer source.Close()
		log.Info().Str("broker", brokerURL).Msg("mqtt source connected")
	} else {
		log.Warn().Msg("MQTT_BROKER_URL not set - mqtt source disabled")
	}

	// Health check endpoint
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
