// Package metrics defines and registers all custom Prometheus metrics for
// the ERP console gateway. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "unverified", "backend_error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsEndedTotal counts destroyed sessions by what ended them.
// Label:
//   - reason: "logout", "inactivity", "storefront", "close", "upstream_401", "superseded"
var SessionsEndedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_ended_total",
		Help:      "Total number of sessions destroyed, by reason.",
	},
	[]string{"reason"},
)

// ActiveSessions tracks the number of sessions currently under inactivity watch.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of live sessions with a running inactivity countdown.",
	},
)

// ── Route policy metrics ──────────────────────────────────────────────────────

// PolicyDecisionsTotal counts route policy verdicts.
// Label:
//   - outcome: "allow", "redirect_login", "redirect_role_home"
var PolicyDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_decisions_total",
		Help:      "Total number of route policy evaluations, by outcome.",
	},
	[]string{"outcome"},
)

// ── Upstream proxy metrics ────────────────────────────────────────────────────

// UpstreamRequestDuration measures the latency of proxied backend calls.
// Label:
//   - method: HTTP method of the proxied request
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of proxied requests to the ERP backend.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method"},
)

// UpstreamRejectionsTotal counts 401 responses from the backend that forced
// a session teardown.
var UpstreamRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_rejections_total",
		Help:      "Total number of upstream 401 responses that invalidated a session.",
	},
)
