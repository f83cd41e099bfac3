// Package metrics defines all custom Prometheus metrics for the CatatTrans
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics self-register with the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catattrans"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", or "unavailable"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionVerificationsTotal counts authoritative session verifications made
// by the API auth middleware.
// Label:
//   - result: "valid" or "invalid"
var SessionVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_verifications_total",
		Help:      "Total number of forced session verifications, by result.",
	},
	[]string{"result"},
)

// SessionReadsTotal counts optimistic session reads on page routes.
// Label:
//   - result: "resolved" (a session was found) or "anonymous"
var SessionReadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_reads_total",
		Help:      "Total number of optimistic session reads, by result.",
	},
	[]string{"result"},
)

// RevalidationQueueDepth tracks the number of pending background re-checks.
var RevalidationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "revalidation_queue_depth",
		Help:      "Current number of session revalidation jobs waiting in the dispatcher.",
	},
)

// ── Bookkeeping metrics ───────────────────────────────────────────────────────

// TransactionsCreatedTotal counts recorded transactions.
// Label:
//   - type: "PEMASUKAN" or "PENGELUARAN"
var TransactionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_created_total",
		Help:      "Total number of transactions recorded, by type.",
	},
	[]string{"type"},
)

// ExcelExportsTotal counts generated Excel exports.
var ExcelExportsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "excel_exports_total",
		Help:      "Total number of Excel export downloads generated.",
	},
)

// ExportDuration measures how long building one Excel export takes.
var ExportDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of Excel export generation.",
		Buckets:   prometheus.DefBuckets,
	},
)
