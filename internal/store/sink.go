package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/metrics"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
)

// Writer is the persistence sink: it serializes a reading and deposits it
// under a namespace-prefixed, second-resolution key.
type Writer struct {
	store Store
}

// NewWriter wraps a store as a reading sink.
func NewWriter(s Store) *Writer {
	return &Writer{store: s}
}

// WriteReading persists one reading and returns the object key it was stored
// under. The key is derived from the reading's ingestion timestamp, so a
// retry with the same reading lands on the same key.
func (w *Writer) WriteReading(ctx context.Context, ns Namespace, r *models.Reading) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		metrics.StoreWritesTotal.WithLabelValues(string(ns), "failed").Inc()
		return "", fmt.Errorf("marshal reading: %w", err)
	}

	key := KeyFor(ns, r.Timestamp)

	start := time.Now()
	err = w.store.Put(ctx, key, body)
	metrics.StoreWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StoreWritesTotal.WithLabelValues(string(ns), "failed").Inc()
		return "", err
	}

	metrics.StoreWritesTotal.WithLabelValues(string(ns), "success").Inc()
	return key, nil
}
