package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentConfirmTotal,
		paymentConfirmDuration,
		fulfillmentTotal,
		couponRedemptionsTotal,
	)
}

var (
	// status: paid|pending|failed|unknown|noop|error
	paymentConfirmTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_confirm_total",
			Help: "Payment confirmation attempts by resulting order status.",
		},
		[]string{"status"},
	)

	paymentConfirmDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_confirm_duration_seconds",
			Help:    "Duration of payment confirmation in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"status"},
	)

	fulfillmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_total",
			Help: "Fulfilled order items by service type.",
		},
		[]string{"service_type"},
	)

	couponRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_redemptions_total",
			Help: "Committed coupon redemptions by coupon code.",
		},
		[]string{"code"},
	)
)

func IncPaymentConfirm(status string) {
	paymentConfirmTotal.WithLabelValues(norm(status)).Inc()
}

func ObservePaymentConfirm(status string, seconds float64) {
	paymentConfirmDuration.WithLabelValues(norm(status)).Observe(seconds)
}

func IncFulfillment(serviceType string) {
	fulfillmentTotal.WithLabelValues(norm(serviceType)).Inc()
}

func IncCouponRedemption(code string) {
	couponRedemptionsTotal.WithLabelValues(norm(code)).Inc()
}
