package feed

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	skafka "github.com/odinenx/live-rooms/internal/shared/kafka"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// EventPublisher envia os eventos do engine para o tópico room_events,
// consumido pelo mirror-worker. Chave = canal, pra manter a ordem por
// sala dentro da partição.
type EventPublisher struct {
	w   *skafka.Writer
	log *zap.Logger
}

func NewEventPublisher(brokers, topic string, log *zap.Logger) *EventPublisher {
	return &EventPublisher{
		w:   skafka.NewWriter(brokers, topic),
		log: log,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, ev events.ChannelEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := skafka.WriteJSON(ctx, p.w, ev.Channel, b); err != nil {
		p.log.Warn("kafka publish failed", zap.String("channel", ev.Channel), zap.Error(err))
		return err
	}
	return nil
}

func (p *EventPublisher) Close() error { return p.w.Close() }
