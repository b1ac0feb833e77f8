package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	r := &Reading{Timestamp: time.Now(), Metrics: map[string]float64{}}
	r.Normalize()

	if r.DeviceID != UnknownDevice {
		t.Errorf("empty device ID not defaulted: got %q", r.DeviceID)
	}
	if v, ok := r.Metrics[MetricTemperature]; !ok || v != 0 {
		t.Errorf("temperature not defaulted to 0: got %v (present=%v)", v, ok)
	}
	if v, ok := r.Metrics[MetricMoisture]; !ok || v != 0 {
		t.Errorf("moisture not defaulted to 0: got %v (present=%v)", v, ok)
	}
}

func TestNormalizeKeepsExistingValues(t *testing.T) {
	r := NewReading("SENSOR-LVIV-01", time.Now())
	r.Metrics[MetricTemperature] = -2.5
	r.Normalize()

	if r.Metrics[MetricTemperature] != -2.5 {
		t.Errorf("existing temperature overwritten: got %v", r.Metrics[MetricTemperature])
	}
}

func TestValidate(t *testing.T) {
	r := NewReading("dev-1", time.Now())
	if err := r.Validate(); err != nil {
		t.Fatalf("valid reading rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Reading)
		wantErr error
	}{
		{"empty device", func(r *Reading) { r.DeviceID = "" }, ErrEmptyDeviceID},
		{"zero timestamp", func(r *Reading) { r.Timestamp = time.Time{} }, ErrZeroTimestamp},
		{"nil metrics", func(r *Reading) { r.Metrics = nil }, ErrNilMetrics},
	}
	for _, tc := range cases {
		r := NewReading("dev-1", time.Now())
		tc.mutate(r)
		if err := r.Validate(); err != tc.wantErr {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestMoistureFraction(t *testing.T) {
	polled := NewReading("dev-1", time.Now())
	polled.Metrics[MetricMoisture] = 0.35
	polled.Units[MetricMoisture] = UnitFraction
	if got := polled.MoistureFraction(); got != 0.35 {
		t.Errorf("fractional moisture changed: got %v", got)
	}

	relayed := NewReading("dev-2", time.Now())
	relayed.Metrics[MetricMoisture] = 35
	relayed.Units[MetricMoisture] = UnitPercent
	if got := relayed.MoistureFraction(); got != 0.35 {
		t.Errorf("percent moisture not normalized: got %v", got)
	}

	// No declared unit reads as a fraction
	bare := NewReading("dev-3", time.Now())
	bare.Metrics[MetricMoisture] = 0.1
	if got := bare.MoistureFraction(); got != 0.1 {
		t.Errorf("undeclared unit not treated as fraction: got %v", got)
	}
}

func TestWireShapeKeepsSpecFields(t *testing.T) {
	r := NewReading("SENSOR-LVIV-01", time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC))
	r.Metrics[MetricTemperature] = 1.5
	r.Metrics[MetricMoisture] = 0.4
	r.Units[MetricMoisture] = UnitFraction

	body, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(body, &wire); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"device_id", "timestamp", "metrics"} {
		if _, ok := wire[field]; !ok {
			t.Errorf("wire shape missing %q", field)
		}
	}
}
