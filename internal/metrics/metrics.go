package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ai_assist"

// Metrics holds the service collectors
type Metrics struct {
	ActiveConnections prometheus.Gauge
	ActiveWorkspaces  prometheus.Gauge
	Actions           *prometheus.CounterVec
	DroppedActions    *prometheus.CounterVec
	BroadcastFrames   *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	ReminderRuns      prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "connections",
			Help:      "Open workspace WebSocket connections.",
		}),
		ActiveWorkspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "sessions",
			Help:      "Requests with at least one user present.",
		}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "actions_total",
			Help:      "Workspace actions processed, by type.",
		}, []string{"type"}),
		DroppedActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "actions_dropped_total",
			Help:      "Workspace actions dropped, by reason.",
		}, []string{"reason"}),
		BroadcastFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "frames_total",
			Help:      "Frames queued to clients, by frame type.",
		}, []string{"type"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "created_total",
			Help:      "Notifications created, by type.",
		}, []string{"type"}),
		ReminderRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "reminder_runs_total",
			Help:      "Completed deadline reminder scans.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.ActiveConnections,
		m.ActiveWorkspaces,
		m.Actions,
		m.DroppedActions,
		m.BroadcastFrames,
		m.Notifications,
		m.ReminderRuns,
	)

	return m
}

// NewNop returns collectors registered on a private registry, for tests and tools
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
