package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		billsCreatedTotal,
		webhookResultsTotal,
		pendingExpiredTotal,
	)
}

var (
	billsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bills_created_total",
			Help: "Payment links created, labeled by pay channel.",
		},
		[]string{"channel"},
	)

	webhookResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_results_total",
			Help: "Confirmation webhook outcomes (paid/cancelled/replay/unauthorized/malformed).",
		},
		[]string{"outcome"},
	)

	pendingExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pending_expired_total",
			Help: "Stale PENDING transactions cancelled by the expiry worker.",
		},
	)
)

func IncBillCreated(channel string) {
	billsCreatedTotal.WithLabelValues(norm(channel)).Inc()
}

func IncWebhookResult(outcome string) {
	webhookResultsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddPendingExpired(n int) {
	pendingExpiredTotal.Add(float64(n))
}
