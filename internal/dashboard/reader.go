package dashboard

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

// DefaultWindow is how many of the most recent objects the dashboard reads.
const DefaultWindow = 100

// Display thresholds for the status line and chart reference lines.
const (
	freezingPoint    = 0.0
	droughtThreshold = 0.20
)

// Row is one reading flattened for tabular display. Moisture is normalized
// to a fraction whichever producer wrote the record.
type Row struct {
	Timestamp   time.Time `json:"timestamp"`
	DeviceID    string    `json:"device_id"`
	Temperature float64   `json:"temperature"`
	Moisture    float64   `json:"moisture"`
	RainProb    float64   `json:"rain_prob"`
}

// Summary is the latest-value view plus a coarse status string.
type Summary struct {
	DeviceID    string    `json:"device_id"`
	Temperature float64   `json:"temperature"`
	Moisture    float64   `json:"moisture"`
	RainProb    float64   `json:"rain_prob"`
	Status      string    `json:"status"`
	LastUpdate  time.Time `json:"last_update"`
	Readings    int       `json:"readings"`
}

// Reader is the read-side collaborator over the object store: list a
// lineage prefix, take the most recently modified N, parse each object, and
// skip anything unparseable rather than failing the whole view.
type Reader struct {
	store  store.Store
	window int
}

// NewReader builds a reader over the given store.
func NewReader(s store.Store, window int) *Reader {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Reader{store: s, window: window}
}

// Rows returns the window of readings under prefix, oldest first.
func (r *Reader) Rows(ctx context.Context, prefix string) ([]Row, error) {
	log := logger.WithComponent("dashboard")

	infos, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastModified.After(infos[j].LastModified)
	})
	if len(infos) > r.window {
		infos = infos[:r.window]
	}

	rows := make([]Row, 0, len(infos))
	for _, info := range infos {
		body, err := r.store.Get(ctx, info.Key)
		if err != nil {
			log.Warn().Err(err).Str("key", info.Key).Msg("skipping unreadable object")
			continue
		}

		var reading models.Reading
		if err := json.Unmarshal(body, &reading); err != nil {
			log.Warn().Err(err).Str("key", info.Key).Msg("skipping unparseable object")
			continue
		}

		rows = append(rows, Row{
			Timestamp:   reading.Timestamp,
			DeviceID:    reading.DeviceID,
			Temperature: reading.Metric(models.MetricTemperature),
			Moisture:    reading.MoistureFraction(),
			RainProb:    reading.Metric(models.MetricRainProb),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	return rows, nil
}

// Summarize reduces the window to its latest values and a status string.
func (r *Reader) Summarize(ctx context.Context, prefix string) (*Summary, error) {
	rows, err := r.Rows(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Summary{Status: "⏳ WAITING FOR DATA"}, nil
	}

	latest := rows[len(rows)-1]

	status := "✅ HEALTHY"
	if latest.Temperature < freezingPoint {
		status = "❄️ FROST WARNING"
	}
	if latest.Moisture < droughtThreshold {
		status = "🌵 DROUGHT RISK"
	}

	return &Summary{
		DeviceID:    latest.DeviceID,
		Temperature: latest.Temperature,
		Moisture:    latest.Moisture,
		RainProb:    latest.RainProb,
		Status:      status,
		LastUpdate:  latest.Timestamp,
		Readings:    len(rows),
	}, nil
}
