package relay

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/gateway/ws"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// StartSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub
// e repassa cada evento recebido para os clientes WebSocket do Hub.
//
// Funcionamento:
// - Recebe mensagens JSON do canal Redis
// - Desserializa para ChannelEvent
// - Chama hub.Broadcast para entregar aos inscritos do canal da sala
func StartSubscriber(ctx context.Context, r *redis.Client, channel string, hub *ws.Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var ev events.ChannelEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Warn("relay unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast(ev)
			}
		}
	}()
}
