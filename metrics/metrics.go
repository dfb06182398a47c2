// Package metrics holds the Prometheus collectors shared by the dispenser components.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pilldispenser"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency. Dispense requests include servo motion.",
		Buckets:   []float64{0.005, 0.05, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route", "status"})

	HTTPActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_active_requests",
		Help:      "Requests currently being served.",
	})

	// OperationsTotal counts Fill, Remove and Dispense outcomes
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Schedule operations by name and outcome.",
	}, []string{"operation", "outcome"})

	MotionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "motions_total",
		Help:      "Servo motion jobs by kind and result.",
	}, []string{"kind", "result"})

	MotionQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "motion_queue_waiting",
		Help:      "Callers waiting for the motion worker.",
	})

	ServoAngle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "servo_angle_degrees",
		Help:      "Last commanded servo angle.",
	})

	LockBusyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schedule_lock_busy_total",
		Help:      "Schedule lock acquisitions that timed out.",
	})

	StorageWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_writes_total",
		Help:      "Schedule persistence attempts by result.",
	}, []string{"result"})

	FilledSlots = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "filled_slots",
		Help:      "Number of slots currently holding a dose.",
	})

	NetworkConnectAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "network_connect_attempts_total",
		Help:      "Network link attempts by result.",
	}, []string{"result"})
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
