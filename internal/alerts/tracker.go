package alerts

import "github.com/znodanilo2017-byte/harvest-guard/internal/models"

// Tracker is an optional per-metric alert state machine (OK -> ALERTING ->
// OK) that suppresses re-fires while a metric stays in breach. Owned by the
// poll loop, keyed by the alert's metric label. Off by default: the stock
// behavior re-fires every tick below threshold.
type Tracker struct {
	alerting map[string]bool
}

// NewTracker builds an empty tracker; every metric starts in the OK state.
func NewTracker() *Tracker {
	return &Tracker{alerting: make(map[string]bool)}
}

// Filter passes through only the events whose metric just transitioned into
// the alerting state. A metric absent from events has recovered and is
// re-armed for the next breach.
func (t *Tracker) Filter(events []models.AlertEvent) []models.AlertEvent {
	seen := make(map[string]bool, len(events))

	var fired []models.AlertEvent
	for _, ev := range events {
		seen[ev.MetricName] = true
		if !t.alerting[ev.MetricName] {
			t.alerting[ev.MetricName] = true
			fired = append(fired, ev)
		}
	}

	for name := range t.alerting {
		if !seen[name] {
			delete(t.alerting, name)
		}
	}

	return fired
}
