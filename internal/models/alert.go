package models

import "time"

// AlertEvent is a threshold breach handed to the notifier. Ephemeral: never
// persisted, never brokered.
type AlertEvent struct {
	// Human-readable metric label, e.g. "Low Temperature"
	MetricName string `json:"metric_name"`

	// Formatted value, e.g. "1.5°C"
	Value string `json:"value"`

	// Severity icon shown in the notification
	SeverityIcon string `json:"severity_icon"`

	// Where the reading came from, e.g. "Lviv Field 1"
	LocationLabel string `json:"location_label"`

	// Wall-clock time the alert was emitted
	EmittedAt time.Time `json:"emitted_at"`
}
