package queue

import (
	"context"

	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/shared/metrics"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// Queue é a fila de saída entre o engine e os transportes externos.
// Os callbacks do barramento só enfileiram aqui: Publish nunca bloqueia
// no I/O de entrega, que roda no Drain.
//
// Política de backpressure: buffer limitado, descarta o evento mais
// novo quando cheio e contabiliza em ws_outbound_dropped_total.
type Queue struct {
	ch  chan events.ChannelEvent
	log *zap.Logger
}

func New(size int, log *zap.Logger) *Queue {
	if size <= 0 {
		size = 1024
	}
	return &Queue{
		ch:  make(chan events.ChannelEvent, size),
		log: log,
	}
}

// Enqueue nunca bloqueia; fila cheia descarta e conta.
func (q *Queue) Enqueue(ev events.ChannelEvent) {
	select {
	case q.ch <- ev:
	default:
		metrics.OutboundDropped.Inc()
		q.log.Warn("outbound queue full, dropping event",
			zap.String("channel", ev.Channel),
			zap.String("table", ev.Event.Table),
		)
	}
}

// Drain consome a fila em FIFO até o contexto encerrar.
func (q *Queue) Drain(ctx context.Context, fn func(events.ChannelEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q.ch:
			fn(ev)
		}
	}
}

// Len expõe a ocupação atual, útil em teste e debug.
func (q *Queue) Len() int { return len(q.ch) }
