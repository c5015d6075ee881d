package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/consumer"
	"example.com/workoutmap/internal/observability"
	httptransport "example.com/workoutmap/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatalf("KAFKA_BROKERS must be set for the event log consumer")
	}

	logger := log.New(os.Stdout, "[event-log] ", log.LstdFlags)
	if err := observability.InitErrorReporting(observability.ErrorReportingConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
	}, logger); err != nil {
		logger.Printf("error reporting disabled: %v", err)
	}
	defer observability.FlushErrors(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	handler := consumer.NewPersistenceHandler(pool)

	var wg sync.WaitGroup
	for _, topic := range cfg.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.KafkaBrokers,
			GroupID:        cfg.ConsumerGroupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		})
		proc := consumer.NewProcessor(reader, handler)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()

			logger.Printf("reading %s as group %s", topic, cfg.ConsumerGroupID)
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("reader for %s stopped: %v", topic, err)
			}
		}()
	}

	metricsCfg := httptransport.DefaultServerConfig(cfg.MetricsAddress)
	metricsSrv := httptransport.NewServer(metricsCfg, promhttp.Handler())
	if err := httptransport.Run(ctx, metricsSrv, metricsCfg.ShutdownTimeout, logger); err != nil {
		logger.Printf("metrics server error: %v", err)
	}

	stop()
	wg.Wait()
}
