package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheus_LicenseChecks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	t.Run("increments valid counter", func(t *testing.T) {
		m.RecordLicenseCheck("valid")
		m.RecordLicenseCheck("valid")
		m.RecordLicenseCheck("valid")

		val := getCounterValue(t, m.LicenseChecks, "valid")
		if val != 3 {
			t.Errorf("expected 3, got %f", val)
		}
	})

	t.Run("tracks results separately", func(t *testing.T) {
		m.RecordLicenseCheck("expired")

		if val := getCounterValue(t, m.LicenseChecks, "expired"); val != 1 {
			t.Errorf("expected 1, got %f", val)
		}
		if val := getCounterValue(t, m.LicenseChecks, "not_found"); val != 0 {
			t.Errorf("expected 0, got %f", val)
		}
	})
}

func TestPrometheus_Heartbeats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.RecordHeartbeat("1.6")
	m.RecordHeartbeat("1.6")
	m.RecordHeartbeat("unknown")

	if val := getCounterValue(t, m.Heartbeats, "1.6"); val != 2 {
		t.Errorf("expected 2, got %f", val)
	}
	if val := getCounterValue(t, m.Heartbeats, "unknown"); val != 1 {
		t.Errorf("expected 1, got %f", val)
	}
}

func TestPrometheus_ChangesAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.RecordLicenseChange("add")
	m.RecordLicenseChange("delete")
	m.RecordPersistenceFailure("save")

	if val := getCounterValue(t, m.LicenseChanges, "add"); val != 1 {
		t.Errorf("expected 1 add, got %f", val)
	}
	if val := getCounterValue(t, m.LicenseChanges, "update"); val != 0 {
		t.Errorf("expected 0 updates, got %f", val)
	}
	if val := getCounterValue(t, m.PersistenceFailures, "save"); val != 1 {
		t.Errorf("expected 1 save failure, got %f", val)
	}
}

func TestPrometheus_DocumentSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	t.Run("sets gauges", func(t *testing.T) {
		m.SetDocumentSize(2, 1000)

		if val := getGaugeValue(t, m.Licenses); val != 2 {
			t.Errorf("expected 2 licenses, got %f", val)
		}
		if val := getGaugeValue(t, m.HeartbeatLogSize); val != 1000 {
			t.Errorf("expected 1000 heartbeats, got %f", val)
		}
	})

	t.Run("supports zero value", func(t *testing.T) {
		m.SetDocumentSize(0, 0)

		if val := getGaugeValue(t, m.Licenses); val != 0 {
			t.Errorf("expected 0, got %f", val)
		}
	})
}

func TestPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetrics(reg); err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	if _, err := NewPrometheusMetrics(reg); err == nil {
		t.Fatal("expected error registering metrics twice")
	}
}

func getCounterValue(t *testing.T, counter *prometheus.CounterVec, label string) float64 {
	t.Helper()
	var m dto.Metric
	if err := counter.WithLabelValues(label).(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := gauge.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}
