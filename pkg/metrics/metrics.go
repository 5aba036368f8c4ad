package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Triage engine metrics
	PatientsRegistered  prometheus.Counter
	PatientsUpdated     prometheus.Counter
	PatientsRemoved     prometheus.Counter
	TreatmentsStarted   prometheus.Counter
	TreatmentsCompleted prometheus.Counter
	QueueSize           prometheus.Gauge
	HistorySize         prometheus.Gauge
	TreatmentProgress   prometheus.Gauge
	Searches            *prometheus.CounterVec
	ValidationFailures  *prometheus.CounterVec

	// Event relay metrics
	EventsPublished     prometheus.Counter
	EventsFailed        prometheus.Counter
	EventsDropped       prometheus.Counter
	EventRetries        *prometheus.CounterVec
	EventPublishLatency prometheus.Histogram

	// Notification metrics
	Notifications *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PatientsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patients_registered_total",
			Help:      "Total number of new patients added to the queue",
		}),
		PatientsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patients_updated_total",
			Help:      "Total number of in-place updates of queued patients",
		}),
		PatientsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patients_removed_total",
			Help:      "Total number of patients removed from the queue by request",
		}),
		TreatmentsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "treatments_started_total",
			Help:      "Total number of treatments started",
		}),
		TreatmentsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "treatments_completed_total",
			Help:      "Total number of treatments completed",
		}),
		QueueSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_size",
			Help:      "Current number of patients in the active queue",
		}),
		HistorySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "history_size",
			Help:      "Current number of entries in the history log",
		}),
		TreatmentProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "treatment_progress_percent",
			Help:      "Progress of the current treatment",
		}),
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "searches_total",
			Help:      "Total number of patient searches",
		}, []string{"mode", "result"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "validation_failures_total",
			Help:      "Total number of rejected actions",
		}, []string{"action"}),

		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_published_total",
			Help:      "Total number of triage events published to the broker",
		}),
		EventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_failed_total",
			Help:      "Total number of triage events that could not be published",
		}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_dropped_total",
			Help:      "Total number of triage events dropped because the relay buffer was full",
		}),
		EventRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "event_retry_attempts_total",
			Help:      "Total number of retry attempts for triage events",
		}, []string{"event_type"}),
		EventPublishLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "event_publish_duration_seconds",
			Help:      "Time spent publishing a triage event",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_total",
			Help:      "Total number of call notifications by outcome",
		}, []string{"status"}),
	}
}

// New returns unregistered metrics, for tests and one-off tools.
func New(namespace string) *Metrics {
	return NewMetrics(namespace, "", nil)
}
