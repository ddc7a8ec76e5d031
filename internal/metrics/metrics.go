// Package metrics counts store activity with Prometheus collectors.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clinicdesk"

// Metrics holds the collectors for one desk.
type Metrics struct {
	registry  *prometheus.Registry
	mutations *prometheus.CounterVec
	logins    *prometheus.CounterVec
	denials   *prometheus.CounterVec
	records   *prometheus.GaugeVec
}

// New creates collectors registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_mutations_total",
			Help:      "Persisted record mutations by collection and operation.",
		}, []string{"collection", "op"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by kind and outcome.",
		}, []string{"event", "outcome"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_denied_total",
			Help:      "Rejected actions by action name.",
		}, []string{"action"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Current number of records per collection.",
		}, []string{"collection"}),
	}
	m.registry.MustRegister(m.mutations, m.logins, m.denials, m.records)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Mutation counts one persisted add, update or remove.
func (m *Metrics) Mutation(collection, op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(collection, op).Inc()
}

// Session counts a login, signup or logout with its outcome.
func (m *Metrics) Session(event, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(event, outcome).Inc()
}

// Denied counts an action rejected by the access guard.
func (m *Metrics) Denied(action string) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(action).Inc()
}

// SetSize records the current length of a collection.
func (m *Metrics) SetSize(collection string, n int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(collection).Set(float64(n))
}

// WriteTextfile writes all metrics in the text exposition format to path,
// for pickup by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
