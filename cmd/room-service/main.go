package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/feed"
	"github.com/odinenx/live-rooms/internal/gateway/queue"
	"github.com/odinenx/live-rooms/internal/gateway/ws"
	"github.com/odinenx/live-rooms/internal/relay"
	"github.com/odinenx/live-rooms/internal/room"
	"github.com/odinenx/live-rooms/internal/shared/cache"
	"github.com/odinenx/live-rooms/internal/shared/config"
	"github.com/odinenx/live-rooms/internal/shared/kafka"
	"github.com/odinenx/live-rooms/internal/shared/logger"
	"github.com/odinenx/live-rooms/internal/shared/metrics"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "room-service"
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Redis: fan-out dos eventos entre instâncias do gateway
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Engine em memória + fila de saída. Toda sala nova já nasce com a
	// fila anexada aos seus seis canais.
	reg := room.NewRegistry(log)
	q := queue.New(cfg.OutboundQueueSize, log)
	reg.RoomCreated = func(g *room.GameRoom) {
		reg.SubscribeRoom(g.ID(), func(channel string, ev events.RealtimeEvent) {
			q.Enqueue(events.ChannelEvent{Channel: channel, Event: ev})
		})
	}

	// Saída: Redis pro gateway WS, Kafka pro espelho Postgres
	relayPub := relay.NewPublisher(redisClient, cfg.RedisPubSubChannel, log)
	eventPub := feed.NewEventPublisher(cfg.KafkaBrokers, cfg.TopicRoomEvents, log)
	defer eventPub.Close()

	go q.Drain(ctx, func(ev events.ChannelEvent) {
		_ = relayPub.Publish(ctx, ev)
		_ = eventPub.Publish(ctx, ev)
	})

	// Gateway WS alimentado pelo relay, nunca direto pelo engine local:
	// assim toda instância entrega o mesmo fluxo
	hub := ws.NewHub(log, reg, func(r *http.Request) bool { return true })
	relay.StartSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)

	// Feed de placar: consumer Kafka aplica os updates nas salas
	scoreReader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicScoreUpdates, cfg.ServiceName)
	defer scoreReader.Close()
	var dlqWriter *kafka.Writer
	if cfg.TopicScoreUpdatesDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicScoreUpdatesDLQ)
		defer dlqWriter.Close()
	}
	consumer := feed.NewScoreConsumer(log, reg, scoreReader, dlqWriter)
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("score consumer stopped", zap.Error(err))
		}
	}()

	bootstrapRooms(log, reg)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: mux}

	go func() {
		log.Info("ws gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// bootstrapRooms cria as salas iniciais a partir de ROOMS, no formato
// "fixtureId:homeTeam:awayTeam" separado por vírgula.
func bootstrapRooms(log *zap.Logger, reg *room.Registry) {
	raw := os.Getenv("ROOMS")
	if raw == "" {
		raw = "12345:Flamengo:Palmeiras"
	}
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) != 3 {
			log.Warn("invalid ROOMS entry", zap.String("entry", entry))
			continue
		}
		fixtureID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			log.Warn("invalid fixture id in ROOMS", zap.String("entry", entry), zap.Error(err))
			continue
		}
		reg.CreateRoom(fixtureID, parts[1], parts[2])
	}
}
