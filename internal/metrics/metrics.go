// Package metrics exposes Prometheus instruments for the expense store and
// the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "budget"

var (
	ExpensesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "expenses",
		Name:      "added_total",
		Help:      "Expenses appended to the store.",
	})

	ExpensesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expenses",
			Name:      "rejected_total",
			Help:      "Expenses rejected by validation before any write.",
		},
		[]string{"reason"},
	)

	StoreResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "resets_total",
		Help:      "Loads that found an unreadable backing file and reset it to empty.",
	})

	storeOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation", "error"},
	)

	httpResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_time_seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"path", "status"},
	)
)

// ObserveStoreOp records the duration of a store operation.
func ObserveStoreOp(op string, elapsed time.Duration, err error) {
	storeOpDuration.
		WithLabelValues(op, strconv.FormatBool(err != nil)).
		Observe(elapsed.Seconds())
}

// ObserveHTTP records the duration of an HTTP request.
func ObserveHTTP(path string, status int, elapsed time.Duration) {
	httpResponseTime.
		WithLabelValues(path, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
