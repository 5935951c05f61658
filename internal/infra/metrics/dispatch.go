package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		dispatchResultsTotal,
		dispatchAttemptsTotal,
		dispatchLatencyMs,
	)
}

var (
	dispatchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_dispatch_results_total",
			Help: "Device command dispatches by final result (ok/exhausted).",
		},
		[]string{"result"},
	)

	dispatchAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "device_dispatch_attempts_total",
			Help: "Individual HTTP attempts against the device API.",
		},
	)

	dispatchLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "device_dispatch_latency_ms",
			Help:    "End-to-end dispatch latency in milliseconds, retries included.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 20000, 60000},
		},
	)
)

func IncDispatchResult(result string) {
	dispatchResultsTotal.WithLabelValues(norm(result)).Inc()
}

func IncDispatchAttempt() {
	dispatchAttemptsTotal.Inc()
}

func ObserveDispatchLatency(ms int64) {
	dispatchLatencyMs.Observe(float64(ms))
}
