package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store Metrics
var (
	// StoreTransactionsTotal tracks store transactions by operation and outcome
	StoreTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_store_transactions_total",
			Help: "Total store transactions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// StoreTransactionDuration tracks how long transactions hold the store lock
	StoreTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyhub_store_transaction_duration_seconds",
			Help:    "Store transaction duration in seconds",
			Buckets: []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"operation"},
	)

	// StoreEntities tracks the current number of stored entities by kind
	StoreEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "studyhub_store_entities",
			Help: "Current number of entities held by the store",
		},
		[]string{"kind"},
	)
)

// HTTP Metrics
var (
	// HTTPRequestsTotal tracks HTTP requests by route pattern, method and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_http_requests_total",
			Help: "Total HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)
)
