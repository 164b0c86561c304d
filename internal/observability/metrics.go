// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	// Action metrics
	ActionsApplied  *prometheus.CounterVec // by action name
	ActionsRejected *prometheus.CounterVec // by action name and error kind
	ActionDuration  *prometheus.HistogramVec

	// Supply metrics
	SupplyUnits *prometheus.GaugeVec // integer supply in smallest units, by symbol code

	// Trust-state metrics
	FrozenAccounts prometheus.Gauge
	PausedTokens   prometheus.Gauge

	// Quota metrics
	QuotaSyncs      prometheus.Counter
	QuotaSyncErrors prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_ledger"
	}

	return &Metrics{
		ActionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "applied_total",
			Help:      "Total number of successfully applied actions",
		}, []string{"action"}),
		ActionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "rejected_total",
			Help:      "Total number of rejected actions",
		}, []string{"action", "kind"}),
		ActionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "duration_seconds",
			Help:      "Action execution duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		SupplyUnits: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "currency",
			Name:      "supply_units",
			Help:      "Circulating supply in smallest units",
		}, []string{"symbol"}),
		FrozenAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trust",
			Name:      "frozen_accounts",
			Help:      "Number of accounts currently frozen",
		}),
		PausedTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trust",
			Name:      "paused_tokens",
			Help:      "Number of currencies currently paused",
		}),
		QuotaSyncs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quota",
			Name:      "syncs_total",
			Help:      "Total number of resource quota synchronizations",
		}),
		QuotaSyncErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quota",
			Name:      "sync_errors_total",
			Help:      "Total number of failed resource quota synchronizations",
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
