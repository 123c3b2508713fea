package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersCreatedTotal,
		ordersRevenueTotal,
	)
}

var (
	ordersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders placed with the gateway, labeled by currency.",
		},
		[]string{"currency"},
	)

	ordersRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_revenue_total",
			Help: "The total monetary value of paid orders, labeled by currency.",
		},
		[]string{"currency"},
	)
)

func IncOrderCreated(currency string) {
	ordersCreatedTotal.WithLabelValues(norm(currency)).Inc()
}

func AddOrderRevenue(currency string, amount float64) {
	ordersRevenueTotal.WithLabelValues(norm(currency)).Add(amount)
}
