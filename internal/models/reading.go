package models

import (
	"errors"
	"strings"
	"time"
)

// Canonical metric names shared by all producers and consumers.
const (
	MetricTemperature = "temperature"
	MetricMoisture    = "moisture"
	MetricRainProb    = "rain_prob"
)

// Moisture units. The polled source reports a 0.0-1.0 fraction, field
// sensors relay a raw 0-100 percentage under the same metric name. The unit
// is recorded per reading so consumers never branch on producer identity.
const (
	UnitFraction = "fraction"
	UnitPercent  = "percent"
)

// UnknownDevice is the sentinel device ID for relayed payloads that omit one.
const UnknownDevice = "UNKNOWN"

// Reading is the canonical record shape written to the object store.
// Timestamp is the local ingestion time, not sensor-reported time.
type Reading struct {
	DeviceID  string             `json:"device_id"`
	Timestamp time.Time          `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
	Units     map[string]string  `json:"units,omitempty"`
}

// Validation errors
var (
	ErrEmptyDeviceID = errors.New("device ID cannot be empty")
	ErrZeroTimestamp = errors.New("timestamp cannot be zero")
	ErrNilMetrics    = errors.New("metrics map cannot be nil")
)

// NewReading creates a reading stamped with the given ingestion time.
func NewReading(deviceID string, ts time.Time) *Reading {
	return &Reading{
		DeviceID:  deviceID,
		Timestamp: ts,
		Metrics:   make(map[string]float64),
		Units:     make(map[string]string),
	}
}

// Normalize trims the device ID, substitutes the sentinel for an empty one,
// and guarantees the recognized metric keys exist (absent values default to
// 0, never null).
func (r *Reading) Normalize() {
	r.DeviceID = strings.TrimSpace(r.DeviceID)
	if r.DeviceID == "" {
		r.DeviceID = UnknownDevice
	}

	if r.Metrics == nil {
		r.Metrics = make(map[string]float64)
	}
	for _, name := range []string{MetricTemperature, MetricMoisture} {
		if _, ok := r.Metrics[name]; !ok {
			r.Metrics[name] = 0
		}
	}
}

// Validate checks the invariants every stored record must satisfy.
func (r *Reading) Validate() error {
	if r.DeviceID == "" {
		return ErrEmptyDeviceID
	}
	if r.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if r.Metrics == nil {
		return ErrNilMetrics
	}
	return nil
}

// Metric returns the named metric value, defaulting to 0 when absent.
func (r *Reading) Metric(name string) float64 {
	return r.Metrics[name]
}

// MoistureFraction returns soil moisture normalized to 0.0-1.0 regardless of
// which producer wrote the reading.
func (r *Reading) MoistureFraction() float64 {
	v := r.Metrics[MetricMoisture]
	if r.Units[MetricMoisture] == UnitPercent {
		return v / 100.0
	}
	return v
}
