// Package metrics defines and registers the custom Prometheus metrics for the
// todo API. It is the single source of truth for metric names, labels and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "todo"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts account flow outcomes.
// Labels:
//   - flow: "register", "login" or "google"
//   - result: "success" or a short failure reason (e.g. "invalid_credentials")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication flow attempts, by flow and result.",
	},
	[]string{"flow", "result"},
)

// TokenVerificationsTotal counts bearer token checks made by the auth guard.
// Label:
//   - result: "ok", "missing", "invalid" or "expired"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// PasswordHashDuration measures bcrypt work, excluding time spent queued.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and compare operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// ObserveHashQueue exposes the hashing pool backlog as hash_queue_depth.
// Call once at startup; a second call panics on duplicate registration.
func ObserveHashQueue(depth func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hash_queue_depth",
			Help:      "Current number of password hashing jobs waiting for a worker.",
		},
		func() float64 { return float64(depth()) },
	)
}

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksMutationsTotal counts task writes.
// Label:
//   - op: "create", "update" or "delete"
var TasksMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_mutations_total",
		Help:      "Total number of successful task writes, by operation.",
	},
	[]string{"op"},
)
