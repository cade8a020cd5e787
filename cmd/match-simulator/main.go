package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/shared/config"
	"github.com/odinenx/live-rooms/internal/shared/kafka"
	"github.com/odinenx/live-rooms/internal/shared/logger"
	"github.com/odinenx/live-rooms/internal/shared/metrics"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

var simUpdatesSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sim_score_updates_sent_total",
	Help: "Total de updates de placar publicados pelo simulador",
})

// Elenco fixo só pra dar nome aos autores dos gols simulados
var scorers = []string{
	"Gabigol", "Arrascaeta", "Pedro", "Raphael Veiga",
	"Endrick", "Dudu", "Everton Ribeiro", "Rony",
}

// match é o estado vivo de uma partida simulada. Placar e minuto só
// andam pra frente, como o feed real garante.
type match struct {
	fixtureID int64
	homeTeam  string
	awayTeam  string
	homeScore int
	awayScore int
	minute    int
	finished  bool
}

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "match-simulator"
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicScoreUpdates)
	defer writer.Close()

	metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })

	matches := loadMatches(log)
	tick := tickInterval()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("match-simulator started",
		zap.String("publish", cfg.TopicScoreUpdates),
		zap.Int("matches", len(matches)),
		zap.Duration("tick", tick),
	)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-ticker.C:
			allDone := true
			for _, m := range matches {
				if m.finished {
					continue
				}
				allDone = false
				su := m.advance()
				if err := publish(ctx, writer, su); err != nil {
					log.Warn("publish score update", zap.Int64("fixture_id", m.fixtureID), zap.Error(err))
					continue
				}
				simUpdatesSent.Inc()
				log.Info("score update sent",
					zap.Int64("fixture_id", su.FixtureID),
					zap.String("score", fmt.Sprintf("%d x %d", su.HomeScore, su.AwayScore)),
					zap.Int("minute", su.Minute),
					zap.Bool("finished", su.Finished),
				)
			}
			if allDone {
				log.Info("all matches finished")
				return
			}
		}
	}
}

// advance avança o relógio da partida e, com sorte, marca um gol.
func (m *match) advance() events.ScoreUpdate {
	m.minute += 1 + rand.Intn(5)
	if m.minute >= 90 {
		m.minute = 90
		m.finished = true
	}

	var scorer string
	if !m.finished && rand.Float64() < 0.25 {
		scorer = scorers[rand.Intn(len(scorers))]
		if rand.Float64() < 0.5 {
			m.homeScore++
		} else {
			m.awayScore++
		}
	}

	return events.ScoreUpdate{
		FixtureID: m.fixtureID,
		HomeScore: m.homeScore,
		AwayScore: m.awayScore,
		Minute:    m.minute,
		Scorer:    scorer,
		Finished:  m.finished,
		Ts:        time.Now().UTC(),
	}
}

func publish(ctx context.Context, w *kafka.Writer, su events.ScoreUpdate) error {
	b, err := json.Marshal(su)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, w, strconv.FormatInt(su.FixtureID, 10), b)
}

// loadMatches lê MATCHES ("fixtureId:homeTeam:awayTeam,...") com o mesmo
// formato do ROOMS do room-service, pra simular exatamente as salas ativas.
func loadMatches(log *zap.Logger) []*match {
	raw := os.Getenv("MATCHES")
	if raw == "" {
		raw = "12345:Flamengo:Palmeiras"
	}
	var out []*match
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) != 3 {
			log.Warn("invalid MATCHES entry", zap.String("entry", entry))
			continue
		}
		fixtureID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			log.Warn("invalid fixture id in MATCHES", zap.String("entry", entry), zap.Error(err))
			continue
		}
		out = append(out, &match{fixtureID: fixtureID, homeTeam: parts[1], awayTeam: parts[2]})
	}
	return out
}

func tickInterval() time.Duration {
	if v := os.Getenv("SIM_TICK"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 2 * time.Second
}
