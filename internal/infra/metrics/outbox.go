package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(outboxDispatchTotal, outboxPendingGauge) }

var (
	outboxDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_dispatch_total",
			Help: "Outbox events dispatched, labeled by event type and outcome.",
		},
		[]string{"type", "outcome"}, // outcome: sent|failed
	)

	outboxPendingGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbox_pending",
			Help: "Number of outbox events awaiting dispatch at last poll.",
		},
	)
)

func IncOutboxDispatch(eventType, outcome string) {
	outboxDispatchTotal.WithLabelValues(norm(eventType), norm(outcome)).Inc()
}

func SetOutboxPending(n int) {
	outboxPendingGauge.Set(float64(n))
}
