package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

// memStore is an in-memory store.Store fake with controllable timestamps.
type memStore struct {
	objects  map[string][]byte
	modified map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
	}
}

func (m *memStore) Put(_ context.Context, key string, body []byte) error {
	m.objects[key] = body
	m.modified[key] = time.Now()
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	body, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return body, nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]store.ObjectInfo, error) {
	var infos []store.ObjectInfo
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, store.ObjectInfo{Key: key, LastModified: m.modified[key]})
		}
	}
	return infos, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) add(t *testing.T, ns store.Namespace, ts time.Time, temp, moist float64, unit string) {
	t.Helper()
	r := models.NewReading("SENSOR-LVIV-01", ts)
	r.Metrics[models.MetricTemperature] = temp
	r.Metrics[models.MetricMoisture] = moist
	if unit != "" {
		r.Units[models.MetricMoisture] = unit
	}
	body, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	key := store.KeyFor(ns, ts)
	m.objects[key] = body
	m.modified[key] = ts
}

func TestRowsSortedAndNormalized(t *testing.T) {
	ms := newMemStore()
	base := time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC)
	ms.add(t, store.NamespacePolled, base.Add(time.Minute), 5, 0.4, models.UnitFraction)
	ms.add(t, store.NamespacePolled, base, 4, 0.3, models.UnitFraction)
	// A relayed record does not leak into the polled lineage
	ms.add(t, store.NamespaceRelayed, base, 9, 55, models.UnitPercent)

	rows, err := NewReader(ms, DefaultWindow).Rows(context.Background(), string(store.NamespacePolled))
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !rows[0].Timestamp.Before(rows[1].Timestamp) {
		t.Error("rows not sorted oldest-first")
	}

	relayed, err := NewReader(ms, DefaultWindow).Rows(context.Background(), string(store.NamespaceRelayed))
	if err != nil {
		t.Fatal(err)
	}
	if len(relayed) != 1 || relayed[0].Moisture != 0.55 {
		t.Errorf("relayed moisture not normalized to a fraction: %+v", relayed)
	}
}

func TestRowsSkipUnparseableObjects(t *testing.T) {
	ms := newMemStore()
	base := time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC)
	ms.add(t, store.NamespacePolled, base, 5, 0.4, models.UnitFraction)

	key := store.KeyFor(store.NamespacePolled, base.Add(time.Minute))
	ms.objects[key] = []byte("not json at all")
	ms.modified[key] = base.Add(time.Minute)

	rows, err := NewReader(ms, DefaultWindow).Rows(context.Background(), string(store.NamespacePolled))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("parse failure was not skipped: got %d rows", len(rows))
	}
}

func TestRowsWindowTakesMostRecent(t *testing.T) {
	ms := newMemStore()
	base := time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ms.add(t, store.NamespacePolled, base.Add(time.Duration(i)*time.Minute), float64(i), 0.5, models.UnitFraction)
	}

	rows, err := NewReader(ms, 3).Rows(context.Background(), string(store.NamespacePolled))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// The window keeps the newest readings
	if rows[0].Temperature != 2 {
		t.Errorf("window kept the wrong readings: %+v", rows)
	}
}

func TestSummarizeStatus(t *testing.T) {
	cases := []struct {
		name       string
		temp       float64
		moist      float64
		wantStatus string
	}{
		{"healthy", 12, 0.5, "✅ HEALTHY"},
		{"frost", -1, 0.5, "❄️ FROST WARNING"},
		{"drought", 12, 0.1, "🌵 DROUGHT RISK"},
	}
	for _, tc := range cases {
		ms := newMemStore()
		ms.add(t, store.NamespacePolled, time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC), tc.temp, tc.moist, models.UnitFraction)

		summary, err := NewReader(ms, DefaultWindow).Summarize(context.Background(), string(store.NamespacePolled))
		if err != nil {
			t.Fatal(err)
		}
		if summary.Status != tc.wantStatus {
			t.Errorf("%s: status = %q, want %q", tc.name, summary.Status, tc.wantStatus)
		}
	}
}

func TestSummarizeEmptyLineage(t *testing.T) {
	summary, err := NewReader(newMemStore(), DefaultWindow).Summarize(context.Background(), string(store.NamespacePolled))
	if err != nil {
		t.Fatal(err)
	}
	if summary.Readings != 0 || summary.Status != "⏳ WAITING FOR DATA" {
		t.Errorf("unexpected empty summary: %+v", summary)
	}
}
