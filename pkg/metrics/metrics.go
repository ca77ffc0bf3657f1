package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Dispatch sweep metrics
	NotificationsSent       *prometheus.CounterVec
	NotificationsFailed     *prometheus.CounterVec
	NotificationsSuppressed *prometheus.CounterVec
	NotificationsExpired    prometheus.Counter
	SweepDuration           prometheus.Histogram
	QueueDepth              prometheus.Gauge

	// Order saga metrics
	OrdersCreated      prometheus.Counter
	OrdersCompensated  prometheus.Counter
	ReservationsFailed prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications delivered per channel",
		}, []string{"channel"}),
		NotificationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Total number of notification delivery failures per channel",
		}, []string{"channel"}),
		NotificationsSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_suppressed_total",
			Help:      "Total number of notifications suppressed by user preferences",
		}, []string{"reason"}),
		NotificationsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_expired_total",
			Help:      "Total number of notifications dropped past their expiry",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_sweep_duration_seconds",
			Help:      "Time spent in one dispatch sweep",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_queue_depth",
			Help:      "Number of pending notifications picked up by the last sweep",
		}),
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created",
		}),
		OrdersCompensated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_compensated_total",
			Help:      "Total number of orders rolled back after a reservation failure",
		}),
		ReservationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_failed_total",
			Help:      "Total number of failed stock reservations",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}
