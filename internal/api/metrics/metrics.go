// Package metrics defines and registers all custom Prometheus metrics for the
// EventSync feedback API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventsync"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsIssuedTotal counts successful logins.
var SessionsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of session credentials issued.",
	},
)

// SessionConflictsTotal counts logins rejected because a session was already active.
var SessionConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_conflicts_total",
		Help:      "Total number of logins rejected due to an active session.",
	},
)

// SessionsRevokedTotal counts explicit logouts.
var SessionsRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of sessions revoked by logout.",
	},
)

// SweeperRunsTotal counts sweeper passes.
var SweeperRunsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweeper_runs_total",
		Help:      "Total number of session sweeper runs.",
	},
)

// SweeperTokensTotal counts tokens inspected by the sweeper.
// Label:
//   - result: "active", "expired" or "skipped"
var SweeperTokensTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweeper_tokens_total",
		Help:      "Total number of stored tokens inspected by the sweeper, by result.",
	},
	[]string{"result"},
)

// ── Pipeline metrics ──────────────────────────────────────────────────────────

// FeedbackSubmittedTotal counts persisted feedback submissions.
var FeedbackSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_submitted_total",
		Help:      "Total number of feedback items submitted.",
	},
)

// ClassificationsTotal counts finished background classifications.
// Label:
//   - result: the resolved sentiment (e.g. "POSITIVE") or "update_failed"
var ClassificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifications_total",
		Help:      "Total number of background classifications, by result.",
	},
	[]string{"result"},
)

// ClassificationDuration measures classify + persist time for one item.
var ClassificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "classification_duration_seconds",
		Help:      "Duration of one background classification from dequeue to persisted update.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ClassificationDroppedTotal counts items left pending because the queue was full.
var ClassificationDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classification_dropped_total",
		Help:      "Total number of feedback items that could not be queued for classification.",
	},
)

// ClassificationQueueDepth tracks items waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ClassificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "classification_queue_depth",
		Help:      "Current number of items pending in each classification worker channel.",
	},
	[]string{"worker_id"},
)

// ── Classifier metrics ────────────────────────────────────────────────────────

// ClassifierFailuresTotal counts classifier calls that fell back to neutral.
// Label:
//   - stage: "transport", "status", "decode", "empty" or "breaker_open"
var ClassifierFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifier_failures_total",
		Help:      "Total number of classifier calls that fell back to neutral, by failure stage.",
	},
	[]string{"stage"},
)

// ClassifierBreakerState is 0 closed, 1 half-open, 2 open.
var ClassifierBreakerState = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "classifier_breaker_state",
		Help:      "Classifier circuit breaker state (0 closed, 1 half-open, 2 open).",
	},
)

// ── Push metrics ──────────────────────────────────────────────────────────────

// NotificationsTotal counts messages handed to local subscribers.
// Label:
//   - type: notification type (e.g. "SESSION_EXPIRED")
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of push messages delivered to local subscribers, by type.",
	},
	[]string{"type"},
)

// NotificationsDroppedTotal counts messages dropped because a subscriber buffer was full.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of push messages dropped for slow subscribers.",
	},
)

// WebSocketSubscribers tracks open push connections.
var WebSocketSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_subscribers",
		Help:      "Current number of open websocket push connections.",
	},
)
