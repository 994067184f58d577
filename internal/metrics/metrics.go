// Package metrics declares the Prometheus collectors exposed on /metrics.
// Everything registers on the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ticket_service"

// TicketsCreatedTotal counts created tickets.
// Label:
//   - tipo: "pedagogico" or "tecnico"
var TicketsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Total number of tickets created, by type.",
	},
	[]string{"tipo"},
)

// AssignmentsTotal counts assignment attempts.
// Label:
//   - result: "ok", "closed", "conflict" or "error"
var AssignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignments_total",
		Help:      "Total number of ticket assignment attempts, by outcome.",
	},
	[]string{"result"},
)

// CancellationsTotal counts cancellation attempts.
// Label:
//   - result: "ok", "already_cancelled" or "error"
var CancellationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cancellations_total",
		Help:      "Total number of ticket cancellation attempts, by outcome.",
	},
	[]string{"result"},
)

// NotificationsTotal counts email deliveries.
// Labels:
//   - kind: "cancellation" or "assignment"
//   - result: "sent" or "failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification emails, by kind and delivery result.",
	},
	[]string{"kind", "result"},
)

// HTTPRequestDuration measures handler latency.
// Labels:
//   - method, route (gin full path), status
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
