package alerts

import (
	"fmt"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/metrics"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
)

// Static thresholds.
const (
	// FrostWarning fires below this temperature in °C.
	FrostWarning = 3.0

	// DroughtWarning fires below this soil moisture fraction.
	DroughtWarning = 0.20
)

// Alert labels and icons as they appear in notifications.
const (
	frostLabel   = "Low Temperature"
	frostIcon    = "❄️"
	droughtLabel = "Low Moisture"
	droughtIcon  = "🌵"
)

// Evaluator turns one reading into zero or more alert events. Stateless: no
// hysteresis, no deduplication — every evaluation below threshold re-fires.
type Evaluator struct {
	locationLabel string
	now           func() time.Time
}

// EvaluatorConfig holds evaluator configuration.
type EvaluatorConfig struct {
	LocationLabel string

	// Now overrides the emission clock (tests)
	Now func() time.Time
}

// NewEvaluator builds an evaluator for a fixed location label.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Evaluator{locationLabel: cfg.LocationLabel, now: now}
}

// Evaluate checks the frost and drought thresholds independently; a reading
// can yield zero, one, or both alerts. Moisture is compared in fractional
// units regardless of which producer wrote the reading.
func (e *Evaluator) Evaluate(r *models.Reading) []models.AlertEvent {
	var events []models.AlertEvent

	if temp := r.Metric(models.MetricTemperature); temp < FrostWarning {
		events = append(events, e.event(frostLabel, fmt.Sprintf("%g°C", temp), frostIcon))
		metrics.AlertsFiredTotal.WithLabelValues(models.MetricTemperature).Inc()
	}

	if moist := r.MoistureFraction(); moist < DroughtWarning {
		events = append(events, e.event(droughtLabel, fmt.Sprintf("%g", moist), droughtIcon))
		metrics.AlertsFiredTotal.WithLabelValues(models.MetricMoisture).Inc()
	}

	return events
}

func (e *Evaluator) event(name, value, icon string) models.AlertEvent {
	return models.AlertEvent{
		MetricName:    name,
		Value:         value,
		SeverityIcon:  icon,
		LocationLabel: e.locationLabel,
		EmittedAt:     e.now(),
	}
}
