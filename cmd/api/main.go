package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/workoutmap/internal/api"
	"example.com/workoutmap/internal/app"
	"example.com/workoutmap/internal/auth"
	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/mapview"
	"example.com/workoutmap/internal/observability"
	"example.com/workoutmap/internal/outbox"
	"example.com/workoutmap/internal/storage"
	httptransport "example.com/workoutmap/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := log.New(os.Stdout, "[workoutmap] ", log.LstdFlags)
	if err := observability.InitErrorReporting(observability.ErrorReportingConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
	}, logger); err != nil {
		logger.Printf("error reporting disabled: %v", err)
	}
	defer observability.FlushErrors(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("open %s storage: %v", cfg.StorageBackend, err)
	}
	defer backend.Close()

	var dispatcher *outbox.Dispatcher
	if cfg.EventsEnabled() {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
		dispatcher = outbox.NewDispatcher(backend.Pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
		go dispatcher.Start(ctx)
	}

	opts := []app.Option{
		app.WithZoom(cfg.MapZoom),
		app.WithFocusAnimation(cfg.FocusAnimation),
		app.WithFormCooldown(cfg.FormCooldown),
	}
	center, err := mapview.ParseCoordinates(cfg.MapCenter)
	if err != nil {
		log.Fatalf("MAP_CENTER: %v", err)
	}
	if center != nil {
		opts = append(opts, app.WithLocator(mapview.StaticLocator{Position: center}))
	}

	alerts := app.NewAlertQueue()
	ctrl := app.NewController(backend.Store, mapview.NewViewport(), alerts, opts...)
	if err := ctrl.Start(ctx); err != nil {
		log.Fatalf("load stored workouts: %v", err)
	}
	if err := ctrl.Locate(ctx); err != nil {
		logger.Printf("initial position unavailable: %v", err)
	}

	mux := http.NewServeMux()
	api.NewHandler(ctrl, alerts).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, "/v1/reset")
	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress)
	server := httptransport.NewServer(serverCfg, httptransport.LogRequests(logger, authMiddleware.Wrap(mux)))

	if err := httptransport.Run(ctx, server, serverCfg.ShutdownTimeout, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server error: %v", err)
	}

	stop()
	if dispatcher != nil {
		dispatcher.Wait()
	}
}
