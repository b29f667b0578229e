package engine

import "github.com/prometheus/client_golang/prometheus"

var verifyOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "payments",
		Name:      "verifications_total",
		Help:      "Payment verification outcomes.",
	},
	[]string{"result"},
)

// Metrics returns the engine collectors for registration in main.
func Metrics() []prometheus.Collector {
	return []prometheus.Collector{verifyOutcomes}
}
