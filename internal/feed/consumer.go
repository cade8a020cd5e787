package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/room"
	skafka "github.com/odinenx/live-rooms/internal/shared/kafka"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// ScoreConsumer consome updates de placar do tópico score_updates e
// aplica na sala que acompanha a fixture. Mensagem rejeitada pelo
// engine (regressão de placar) vai pra DLQ; fixture sem sala ativa é
// descartada com warn.
type ScoreConsumer struct {
	log    *zap.Logger
	reg    *room.Registry
	reader *skafka.Reader
	dlq    *skafka.Writer // opcional
}

func NewScoreConsumer(log *zap.Logger, reg *room.Registry, reader *skafka.Reader, dlq *skafka.Writer) *ScoreConsumer {
	return &ScoreConsumer{log: log, reg: reg, reader: reader, dlq: dlq}
}

// Run é o loop principal: consome, processa, manda falha pra DLQ.
// Retorna quando o contexto encerra.
func (c *ScoreConsumer) Run(ctx context.Context) error {
	for {
		_, value, err := skafka.ReadNext(ctx, c.reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		if err := c.processOne(ctx, value); err != nil {
			c.log.Error("process score update", zap.Error(err))
			c.toDLQ(ctx, value, err)
		}
	}
}

// processOne aplica um update de placar; separado do loop pra ficar
// testável sem broker.
func (c *ScoreConsumer) processOne(ctx context.Context, value []byte) error {
	var su events.ScoreUpdate
	if err := json.Unmarshal(value, &su); err != nil {
		return fmt.Errorf("unmarshal score update: %w", err)
	}

	g, err := c.reg.RoomByFixture(su.FixtureID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			// fixture sem sala ativa: nada a fazer
			c.log.Warn("score update for unknown fixture", zap.Int64("fixture_id", su.FixtureID))
			return nil
		}
		return err
	}

	res, err := c.reg.ApplyScoreUpdate(g.ID(), su.HomeScore, su.AwayScore, su.Minute, su.Scorer)
	if err != nil {
		return fmt.Errorf("apply score update fixture %d: %w", su.FixtureID, err)
	}
	if res.GoalScored {
		c.log.Info("goal applied",
			zap.Int64("fixture_id", su.FixtureID),
			zap.Int("home", su.HomeScore),
			zap.Int("away", su.AwayScore),
			zap.Int("settled_picks", len(res.Settled)),
		)
	}

	if su.Finished {
		if _, err := c.reg.SetStatus(g.ID(), room.StatusFinished); err != nil {
			return fmt.Errorf("finish room fixture %d: %w", su.FixtureID, err)
		}
	}
	return nil
}

func (c *ScoreConsumer) toDLQ(ctx context.Context, value []byte, cause error) {
	if c.dlq == nil {
		return
	}
	if err := skafka.WriteJSON(ctx, c.dlq, cause.Error(), value); err != nil {
		c.log.Error("dlq write failed", zap.Error(err))
	}
}
