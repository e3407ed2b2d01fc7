package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests         *prometheus.CounterVec
	CounterSessionsOpened   *prometheus.CounterVec
	CounterSessionsFinished prometheus.Counter
	CounterPersistFailures  prometheus.Counter
	CounterSuggestions      *prometheus.CounterVec

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("fittrack", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fittrack", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterSessionsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "player_sessions_opened",
			Help:      "Workout player sessions opened, by whether an in-progress log was resumed",
		}, []string{"resumed"}),
		CounterSessionsFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "player_sessions_finished",
			Help:      "Workout logs finalized",
		}),
		CounterPersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "player_persist_failures",
			Help:      "Failed saves of a workout log",
		}),
		CounterSuggestions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "suggestions",
			Help:      "Workout suggestion requests by result",
		}, []string{"result"}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}),
	}
}

// SessionOpened, SessionFinished and PersistFailed make the manager a
// player observer.
func (m *Manager) SessionOpened(resumed bool) {
	m.CounterSessionsOpened.WithLabelValues(strconv.FormatBool(resumed)).Inc()
}

func (m *Manager) SessionFinished() {
	m.CounterSessionsFinished.Inc()
}

func (m *Manager) PersistFailed() {
	m.CounterPersistFailures.Inc()
}

// SuggestionResult counts one suggestion request outcome.
func (m *Manager) SuggestionResult(result string) {
	m.CounterSuggestions.WithLabelValues(result).Inc()
}
