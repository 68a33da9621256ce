// Package metrics defines and registers all custom Prometheus metrics for
// the client-portal authorization service. It is the single source of truth
// for metric names, labels, and help strings. Metrics self-register with the
// default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// AuthDecisionsTotal counts navigation decisions by outcome.
// Labels:
//   - outcome: "allowed", "redirect_to_login", "redirect_to_setup",
//     "redirect_to_external_portal"
//   - source: "callback" or "guard"
var AuthDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Total number of authorization decisions, by outcome and source.",
	},
	[]string{"outcome", "source"},
)

// CallbackRunsTotal counts completed callback state-machine runs.
// Label:
//   - result: "navigated", "replayed", "error"
var CallbackRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callback_runs_total",
		Help:      "Total number of auth callback runs, by result.",
	},
	[]string{"result"},
)

// CallbackDuration measures one callback run end-to-end, including the
// deliberate bootstrap delay.
var CallbackDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "callback_duration_seconds",
		Help:      "Duration of auth callback runs from request to decision.",
		Buckets:   []float64{.25, .5, 1, 1.5, 2, 3, 5, 10},
	},
)

// BootstrapTotal counts fallback profile-creation attempts.
// Label:
//   - result: "created" or "conflict"
var BootstrapTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_bootstrap_total",
		Help:      "Total number of client-side profile bootstrap attempts, by result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks pending entries in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of entries pending in each audit dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts audit entries dropped because a worker buffer
// was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit entries dropped due to full worker buffers.",
	},
)
