// Package metrics defines and registers all custom Prometheus metrics for
// the reservation API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reservation"

// ── Transition metrics ────────────────────────────────────────────────────────

// TransitionsTotal counts committed status transitions.
// Labels:
//   - kind: "session" or "vehicle_rental"
//   - status: the new reservation status (e.g. "confirmed")
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of committed reservation status transitions.",
	},
	[]string{"kind", "status"},
)

// TransitionErrorsTotal counts rejected transitions.
// Label:
//   - reason: short rejection cause (e.g. "terminal_state", "invalid_target",
//     "no_op", "concurrent_modification")
var TransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_errors_total",
		Help:      "Total number of rejected reservation status transitions.",
	},
	[]string{"reason"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsSentTotal counts notifications handed to the mailer.
// Labels:
//   - event_type: the logical event (e.g. "reservation_status_change")
//   - role: the target role ("student", "admin")
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications delivered to the mailer.",
	},
	[]string{"event_type", "role"},
)

// NotificationsFailedTotal counts failed deliveries.
// Label:
//   - reason: short failure cause (e.g. "send_error")
var NotificationsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Total number of notification deliveries that failed.",
	},
	[]string{"reason"},
)

// NotificationsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped), "miss" (new, delivered) or
//     "bypass" (explicit resend, check skipped)
var NotificationsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dedup_total",
		Help:      "Total number of notification dedup checks, by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Retention metrics ─────────────────────────────────────────────────────────

// RetentionAdvancedTotal counts retention level advances, whether applied
// by a sweep or forced by an admin.
// Label:
//   - level: the level entered ("deactivated", "anonymized", "permanent")
var RetentionAdvancedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retention_advanced_total",
		Help:      "Total number of users advanced through the deletion pipeline.",
	},
	[]string{"level"},
)
