// Package metrics defines the custom Prometheus collectors of the portal. It
// is the single source of truth for metric names, labels and help strings.
//
// Collectors register with the default registry on package init via promauto.
// HTTP request metrics come from echoprometheus and live in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// Login results.
const (
	LoginSuccess     = "success"
	LoginInvalid     = "invalid_credentials"
	LoginUnavailable = "store_unavailable"
	LoginError       = "error"
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: success, invalid_credentials, store_unavailable or error
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsersCreatedTotal counts accounts created through the admin API.
// Label:
//   - role: user or admin
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of user accounts created, by role.",
	},
	[]string{"role"},
)

var UsersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_deleted_total",
		Help:      "Total number of user accounts deleted.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionExpirationsTotal counts sessions dropped by the lazy timeout check.
var SessionExpirationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expirations_total",
		Help:      "Total number of sessions that timed out.",
	},
)

// GateDenialsTotal counts requests refused by the authorization gate.
// Label:
//   - reason: unauthenticated or forbidden
var GateDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_denials_total",
		Help:      "Total number of requests denied by the authorization gate, by reason.",
	},
	[]string{"reason"},
)

// ── Document metrics ──────────────────────────────────────────────────────────

// DocumentsGeneratedTotal counts generated XML documents.
// Label:
//   - kind: the message type, or "acmt.007" for account opening requests
var DocumentsGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_generated_total",
		Help:      "Total number of XML documents generated, by kind.",
	},
	[]string{"kind"},
)
