package relay

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// Publisher repassa os eventos do engine para o canal Redis Pub/Sub,
// de onde qualquer instância de gateway alimenta seus clientes.
type Publisher struct {
	r       *redis.Client
	channel string
	log     *zap.Logger
}

func NewPublisher(r *redis.Client, channel string, log *zap.Logger) *Publisher {
	return &Publisher{r: r, channel: channel, log: log}
}

func (p *Publisher) Publish(ctx context.Context, ev events.ChannelEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.r.Publish(ctx, p.channel, b).Err(); err != nil {
		p.log.Warn("redis publish failed", zap.String("channel", ev.Channel), zap.Error(err))
		return err
	}
	return nil
}
