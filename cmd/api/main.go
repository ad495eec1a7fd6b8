// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"shortsradar/internal/adapter/events"
	"shortsradar/internal/adapter/youtube"
	"shortsradar/internal/config"
	"shortsradar/internal/domain/trend"
	"shortsradar/internal/logger"
	"shortsradar/internal/metrics"
	"shortsradar/internal/server"
	"shortsradar/internal/service/listening"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if cfg.YouTube.APIKey == "" {
		appLogger.Warn("YOUTUBE_API_KEY is not set; ranking requests will be rejected")
	}

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	collector := metrics.NewCollector()

	publisher, natsConn := initPublisher(cfg.NATS, appLogger)
	if natsConn != nil {
		defer natsConn.Close()
	}

	youtubeClient := youtube.NewClient(
		cfg.YouTube,
		youtube.WithLogger(appLogger.With(logger.String("component", "youtube"))),
		youtube.WithRecorder(collector),
	)

	// Initialize ranker
	ranker := listening.NewRanker(
		youtubeClient,
		publisher,
		collector,
		appLogger.With(logger.String("component", "ranker")),
		listening.RankerConfig{},
	)

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, ranker, collector, appLogger)

	// Start HTTP server
	go func() {
		appLogger.Info("Starting HTTP server",
			logger.String("addr", httpServer.Addr()),
			logger.String("environment", cfg.Environment),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server error", logger.Error(err))
			shutdown <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	appLogger.Info("Shutdown signal received", logger.String("signal", sig.String()))

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown error", logger.Error(err))
	}

	// Flush pending events
	if natsConn != nil {
		if err := natsConn.FlushWithContext(shutdownCtx); err != nil {
			appLogger.Warn("NATS flush error", logger.Error(err))
		}
	}

	appLogger.Info("Shutdown complete")
}

// initPublisher connects to NATS when configured. Without a URL, or when the
// connection fails, ranked events are dropped and the server runs on.
func initPublisher(cfg config.NATSConfig, appLogger logger.Logger) (trend.EventPublisher, *nats.Conn) {
	if cfg.URL == "" {
		appLogger.Info("NATS_URL is not set; ranked events are disabled")
		return events.NopPublisher{}, nil
	}

	natsConn, err := events.Connect(cfg, appLogger.With(logger.String("component", "nats")))
	if err != nil {
		appLogger.Warn("Failed to connect to NATS; ranked events are disabled", logger.Error(err))
		return events.NopPublisher{}, nil
	}

	return events.NewNATSPublisher(natsConn, cfg.EventsTopic), natsConn
}
