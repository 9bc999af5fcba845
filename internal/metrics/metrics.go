/**
 * @description
 * Prometheus instrumentation for the connector. Counts use-case outcomes and
 * compensation results; refund failures are the series operators alert on,
 * since a failed refund means money left an account and was not returned.
 */
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "core_connector"

// Outcome labels for OperationTotal.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Refund result labels for RefundTotal.
const (
	RefundSucceeded = "succeeded"
	RefundFailed    = "failed"
)

var (
	// OperationTotal counts use-case invocations by operation and outcome.
	OperationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Connector use-case invocations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// RefundTotal counts compensating refund attempts by result.
	RefundTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refunds_total",
		Help:      "Compensating refund attempts by result.",
	}, []string{"result"})
)

// ObserveOperation records one use-case invocation.
func ObserveOperation(operation, outcome string) {
	OperationTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveRefund records one compensating refund attempt.
func ObserveRefund(result string) {
	RefundTotal.WithLabelValues(result).Inc()
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
