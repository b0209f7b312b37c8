// Package metrics provides Prometheus metrics for licenze.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "licenze"

// PrometheusMetrics holds the service's Prometheus collectors.
type PrometheusMetrics struct {
	// LicenseChecks counts license checks by result (valid, invalid, expired, not_found).
	LicenseChecks *prometheus.CounterVec
	// Heartbeats counts recorded heartbeats by reported client version.
	Heartbeats *prometheus.CounterVec
	// LicenseChanges counts administrative changes by operation.
	LicenseChanges *prometheus.CounterVec
	// PersistenceFailures counts swallowed store failures by operation (load, save).
	PersistenceFailures *prometheus.CounterVec
	// Licenses is the number of license records after the last write.
	Licenses prometheus.Gauge
	// HeartbeatLogSize is the heartbeat log length after the last write.
	HeartbeatLogSize prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		LicenseChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "license_checks_total",
			Help:      "License checks by result.",
		}, []string{"result"}),
		Heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeats_total",
			Help:      "Heartbeats recorded by client version.",
		}, []string{"version"}),
		LicenseChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "license_changes_total",
			Help:      "Administrative license changes by operation.",
		}, []string{"operation"}),
		PersistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Store failures absorbed by the service, by operation.",
		}, []string{"operation"}),
		Licenses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "licenses",
			Help:      "Number of license records.",
		}),
		HeartbeatLogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heartbeat_log_size",
			Help:      "Number of heartbeat events retained.",
		}),
	}

	collectors := []prometheus.Collector{
		m.LicenseChecks,
		m.Heartbeats,
		m.LicenseChanges,
		m.PersistenceFailures,
		m.Licenses,
		m.HeartbeatLogSize,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordLicenseCheck counts a license check outcome.
func (m *PrometheusMetrics) RecordLicenseCheck(result string) {
	m.LicenseChecks.WithLabelValues(result).Inc()
}

// RecordHeartbeat counts a heartbeat from a client version.
func (m *PrometheusMetrics) RecordHeartbeat(version string) {
	m.Heartbeats.WithLabelValues(version).Inc()
}

// RecordLicenseChange counts an add, update or delete.
func (m *PrometheusMetrics) RecordLicenseChange(operation string) {
	m.LicenseChanges.WithLabelValues(operation).Inc()
}

// RecordPersistenceFailure counts a swallowed load or save failure.
func (m *PrometheusMetrics) RecordPersistenceFailure(operation string) {
	m.PersistenceFailures.WithLabelValues(operation).Inc()
}

// SetDocumentSize records the document's sizes after a write.
func (m *PrometheusMetrics) SetDocumentSize(licenses, heartbeats int) {
	m.Licenses.Set(float64(licenses))
	m.HeartbeatLogSize.Set(float64(heartbeats))
}
