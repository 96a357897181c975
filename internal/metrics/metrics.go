// Package metrics defines and registers all custom Prometheus metrics for
// the resume-platform gateway. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resume_gateway"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionResolutionsTotal counts session resolutions by outcome.
// Label:
//   - outcome: "anonymous", "authenticated", "pending_approval"
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of per-request session resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// GuardDecisionsTotal counts route-guard decisions.
// Labels:
//   - route: the gated route path
//   - decision: "allow" or "redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route-guard decisions, by route and decision.",
	},
	[]string{"route", "decision"},
)

// LoginsTotal counts credential exchanges.
// Label:
//   - result: "ok" or "rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts proxied to the backend.",
	},
	[]string{"result"},
)

// IdentityCacheTotal counts identity cache lookups.
// Label:
//   - result: "hit" or "miss"
var IdentityCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_cache_total",
		Help:      "Total number of identity cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Chat metrics ──────────────────────────────────────────────────────────────

// ChatSessionsTotal counts opened chat sessions.
// Labels:
//   - kind: "technical_support" or "by_id"
//   - result: "connected", "not_found", "error"
var ChatSessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_sessions_total",
		Help:      "Total number of chat session opens, by target kind and result.",
	},
	[]string{"kind", "result"},
)

// ChatFramesTotal counts relayed chat frames.
// Label:
//   - direction: "inbound" (backend → browser) or "outbound" (browser → backend)
var ChatFramesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_frames_total",
		Help:      "Total number of chat frames relayed through the gateway.",
	},
	[]string{"direction"},
)

// ChatReconnectsTotal counts transport re-dial attempts after a failure.
// Label:
//   - result: "ok" or "failed"
var ChatReconnectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_reconnects_total",
		Help:      "Total number of chat transport reconnect attempts, by result.",
	},
	[]string{"result"},
)
