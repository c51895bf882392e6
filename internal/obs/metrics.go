// Package obs holds the Prometheus metrics for the client.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the TVET-MIS client.
// Pass to components that need to record metrics.
type Metrics struct {
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	GateDecisions      *prometheus.CounterVec
	LoginsTotal        *prometheus.CounterVec
	RoleSwitchesTotal  prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		APIRequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tvetmis",
				Name:      "api_requests_total",
				Help:      "Total backend API requests",
			},
			[]string{"operation", "status"}, // status=ok/api_error/network_error
		),
		APIRequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tvetmis",
				Name:      "api_request_duration_seconds",
				Help:      "Backend API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		GateDecisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tvetmis",
				Name:      "gate_decisions_total",
				Help:      "Navigation gate decisions",
			},
			[]string{"state", "outcome"}, // outcome=served/redirected
		),
		LoginsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tvetmis",
				Name:      "logins_total",
				Help:      "Login attempts",
			},
			[]string{"result"}, // result=ok/invalid_credentials/role_not_granted/error
		),
		RoleSwitchesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "tvetmis",
				Name:      "role_switches_total",
				Help:      "Completed role switches",
			},
		),
	}
}
