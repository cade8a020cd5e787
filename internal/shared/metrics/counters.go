package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores do engine de salas. Registrados no registry default,
// expostos pelo servidor de métricas de cada serviço.
var (
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "room_events_published_total",
		Help: "Eventos realtime publicados no barramento, por tabela",
	}, []string{"table"})

	OddsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "room_odds_settled_total",
		Help: "Odds liquidadas, por status final",
	}, []string{"status"})

	OperationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "room_operations_rejected_total",
		Help: "Operações rejeitadas pelo engine, por motivo",
	}, []string{"reason"})

	OutboundDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_outbound_dropped_total",
		Help: "Eventos descartados pela fila de saída do gateway cheia",
	})
)
