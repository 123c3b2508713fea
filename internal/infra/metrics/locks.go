package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(lockAcquisitionsTotal) }

var lockAcquisitionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lock_acquisitions_total",
		Help: "Distributed lock acquisition attempts by key and result.",
	},
	[]string{"key", "result"}, // result: acquired|held|error
)

func IncLockAcquisition(key, result string) {
	lockAcquisitionsTotal.WithLabelValues(norm(key), norm(result)).Inc()
}
