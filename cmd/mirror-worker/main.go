package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/mirror"
	"github.com/odinenx/live-rooms/internal/shared/config"
	"github.com/odinenx/live-rooms/internal/shared/db"
	"github.com/odinenx/live-rooms/internal/shared/kafka"
	"github.com/odinenx/live-rooms/internal/shared/logger"
	"github.com/odinenx/live-rooms/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "mirror-worker"
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoomEvents, cfg.ServiceName)
	defer reader.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicRoomEventsDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoomEventsDLQ)
		defer dlqWriter.Close()
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	store := mirror.NewStore(pg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("mirror-worker started", zap.String("consume", cfg.TopicRoomEvents))

	// Loop principal: consome room_events e materializa no Postgres.
	// Falha de aplicação vai pra DLQ e o loop segue.
	for {
		key, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shutting down")
				return
			}
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		if err := store.Apply(ctx, value); err != nil {
			log.Error("apply event", zap.String("channel", string(key)), zap.Error(err))
			if dlqWriter != nil {
				if derr := kafka.WriteJSON(ctx, dlqWriter, string(key), value); derr != nil {
					log.Error("dlq write failed", zap.Error(derr))
				}
			}
		}
	}
}
