// Package metrics defines and registers the custom Prometheus metrics of the
// user management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default registry at package init through
// promauto; /metrics exposes them next to echoprometheus' HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usermanagement"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts minted tokens.
// Label:
//   - kind: "login", "register", "admin" or "self"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued, by issuance path.",
	},
	[]string{"kind"},
)

// TokenValidationsTotal counts explicit /auth/validate calls.
// Label:
//   - result: "valid" or "invalid"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of explicit token validations, by result.",
	},
	[]string{"result"},
)

// IdentityResolutionsTotal counts how each request's identity was settled.
// Label:
//   - outcome: "authenticated", "no_token", "invalid_token", "unknown_subject" or "store_error"
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of per-request identity resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// AuthorizationDenialsTotal counts requests stopped by the guard middleware.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests rejected by role checks.",
	},
	[]string{"reason"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsCreatedTotal counts created accounts.
// Label:
//   - origin: "register" or "admin"
var AccountsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of accounts created, by origin.",
	},
	[]string{"origin"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// AccountEventsPublishedTotal counts lifecycle event deliveries.
// Labels:
//   - type: the event type (e.g. "account.created")
//   - result: "ok", "error" or "dropped"
var AccountEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_events_published_total",
		Help:      "Total number of account lifecycle events handled by the dispatcher.",
	},
	[]string{"type", "result"},
)

// AccountEventsQueueDepth tracks events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AccountEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "account_events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AccountEventPublishDuration measures how long publishing one event takes.
var AccountEventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "account_event_publish_duration_seconds",
		Help:      "Duration of delivering one event to all publishers.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)
