package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/cacheflow/pkg/domain"
)

// Port report results used as the "result" label.
const (
	ResultSet        = "set"
	ResultUnset      = "unset"
	ResultSuppressed = "suppressed"
)

// Metrics holds the canvas collectors. Register them with Register and
// feed them through Hooks.
type Metrics struct {
	Edits       *prometheus.CounterVec
	EditsNoop   *prometheus.CounterVec
	PortReports *prometheus.CounterVec
	Derived     prometheus.Counter
	Skipped     prometheus.Counter
	Steps       prometheus.Gauge
	Ports       prometheus.Gauge
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		Edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cacheflow_edits_total",
				Help: "Total number of applied workflow edits",
			},
			[]string{"op"},
		),
		EditsNoop: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cacheflow_edits_noop_total",
				Help: "Total number of edits that referenced a missing step or changed nothing",
			},
			[]string{"op"},
		),
		PortReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cacheflow_port_reports_total",
				Help: "Port registry writes by lifecycle trackers",
			},
			[]string{"result"},
		),
		Derived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cacheflow_connections_derived_total",
			Help: "Connection views emitted by derivation passes",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cacheflow_connections_skipped_total",
			Help: "Connections skipped because an endpoint was not registered",
		}),
		Steps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cacheflow_steps",
			Help: "Number of steps in the last edited workflow",
		}),
		Ports: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cacheflow_ports_registered",
			Help: "Number of registered ports after the last lifecycle pass",
		}),
	}
}

// Collectors lists every collector.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Edits, m.EditsNoop, m.PortReports, m.Derived, m.Skipped, m.Steps, m.Ports,
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdit: func(_ context.Context, e *domain.EditEvent) {
			if !e.Applied {
				m.EditsNoop.WithLabelValues(e.Op).Inc()
				return
			}
			m.Edits.WithLabelValues(e.Op).Inc()
			m.Steps.Set(float64(e.Steps))
		},
		OnPortReport: func(_ context.Context, e *domain.PortEvent) {
			m.PortReports.WithLabelValues(ResultSet).Add(float64(e.Set))
			m.PortReports.WithLabelValues(ResultUnset).Add(float64(e.Unset))
			m.PortReports.WithLabelValues(ResultSuppressed).Add(float64(e.Suppressed))
			m.Ports.Set(float64(e.Registered))
		},
		OnDerive: func(_ context.Context, e *domain.DeriveEvent) {
			m.Derived.Add(float64(e.Emitted))
			m.Skipped.Add(float64(e.Skipped))
		},
	}
}
