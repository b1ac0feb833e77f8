package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/alerts"
	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
	"github.com/znodanilo2017-byte/harvest-guard/internal/source"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

// fakeSource returns a canned reading or error per call.
type fakeSource struct {
	readings []*models.Reading
	errs     []error
	calls    int
}

func (f *fakeSource) Fetch(context.Context) (*models.Reading, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.readings) {
		return f.readings[i], nil
	}
	return nil, source.ErrNoReading
}

// fakeNotifier records sent events.
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []models.AlertEvent
	failed bool
}

func (f *fakeNotifier) Send(_ context.Context, ev models.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("bot API down")
	}
	f.sent = append(f.sent, ev)
	return nil
}

// memStore is an in-memory store.Store fake.
type memStore struct {
	objects map[string][]byte
	failPut error
}

func newMemStore() *memStore { return &memStore{objects: make(map[string][]byte)} }

func (m *memStore) Put(_ context.Context, key string, body []byte) error {
	if m.failPut != nil {
		return m.failPut
	}
	m.objects[key] = body
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	return m.objects[key], nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]store.ObjectInfo, error) {
	var infos []store.ObjectInfo
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, store.ObjectInfo{Key: key})
		}
	}
	return infos, nil
}

func (m *memStore) Close() error { return nil }

func polledReading(temp, moist float64) *models.Reading {
	r := models.NewReading("SENSOR-LVIV-01", time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC))
	r.Metrics[models.MetricTemperature] = temp
	r.Metrics[models.MetricMoisture] = moist
	r.Units[models.MetricMoisture] = models.UnitFraction
	return r
}

func newLoop(src source.Source, ms *memStore, n *fakeNotifier, tracker *alerts.Tracker) *Loop {
	return NewLoop(LoopConfig{
		Source:    src,
		Sink:      store.NewWriter(ms),
		Evaluator: alerts.NewEvaluator(alerts.EvaluatorConfig{LocationLabel: "Lviv Field 1"}),
		Notifier:  n,
		Tracker:   tracker,
		Interval:  time.Minute,
	})
}

func TestTickEndToEnd(t *testing.T) {
	src := &fakeSource{readings: []*models.Reading{polledReading(1.0, 0.5)}}
	ms := newMemStore()
	n := &fakeNotifier{}

	newLoop(src, ms, n, nil).Tick(context.Background())

	if len(ms.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(ms.objects))
	}
	for key := range ms.objects {
		if !strings.HasPrefix(key, string(store.NamespacePolled)) {
			t.Errorf("object not under polled namespace: %s", key)
		}
	}

	// temp 1.0 < 3.0 fires frost; moisture 0.5 >= 0.20 stays quiet
	if len(n.sent) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d: %+v", len(n.sent), n.sent)
	}
	if n.sent[0].MetricName != "Low Temperature" {
		t.Errorf("unexpected alert: %+v", n.sent[0])
	}
}

func TestTickSkipsOnNoReading(t *testing.T) {
	src := &fakeSource{errs: []error{fmt.Errorf("%w: upstream down", source.ErrNoReading)}}
	ms := newMemStore()
	n := &fakeNotifier{}
	loop := newLoop(src, ms, n, nil)

	loop.Tick(context.Background())

	if len(ms.objects) != 0 {
		t.Errorf("no-reading tick wrote %d objects", len(ms.objects))
	}
	if len(n.sent) != 0 {
		t.Errorf("no-reading tick sent %d alerts", len(n.sent))
	}

	// The loop is still alive for the next tick
	src.readings = []*models.Reading{nil, polledReading(20, 0.5)}
	loop.Tick(context.Background())
	if len(ms.objects) != 1 {
		t.Errorf("loop did not recover after failed tick: %d objects", len(ms.objects))
	}
}

func TestTickStoreFailureStillEvaluatesAlerts(t *testing.T) {
	src := &fakeSource{readings: []*models.Reading{polledReading(-1, 0.1)}}
	ms := newMemStore()
	ms.failPut = errors.New("bucket unreachable")
	n := &fakeNotifier{}

	newLoop(src, ms, n, nil).Tick(context.Background())

	// Write failure is logged and abandoned; thresholds still checked
	if len(n.sent) != 2 {
		t.Fatalf("expected frost+drought alerts despite write failure, got %d", len(n.sent))
	}
}

func TestTickNotifyFailureDoesNotCrash(t *testing.T) {
	src := &fakeSource{readings: []*models.Reading{polledReading(-1, 0.5)}}
	ms := newMemStore()
	n := &fakeNotifier{failed: true}

	newLoop(src, ms, n, nil).Tick(context.Background())

	if len(ms.objects) != 1 {
		t.Errorf("reading not stored when notify fails: %d objects", len(ms.objects))
	}
}

// panicSource panics inside fetch.
type panicSource struct{}

func (panicSource) Fetch(context.Context) (*models.Reading, error) {
	panic("boom")
}

func TestTickRecoversFromPanic(t *testing.T) {
	loop := newLoop(panicSource{}, newMemStore(), &fakeNotifier{}, nil)

	// Must not propagate
	loop.Tick(context.Background())
}

func TestTickWithTrackerSuppressesRefire(t *testing.T) {
	src := &fakeSource{readings: []*models.Reading{
		polledReading(1.0, 0.5),
		polledReading(0.5, 0.5),
	}}
	ms := newMemStore()
	n := &fakeNotifier{}
	loop := newLoop(src, ms, n, alerts.NewTracker())

	loop.Tick(context.Background())
	loop.Tick(context.Background())

	if len(n.sent) != 1 {
		t.Fatalf("tracker mode sent %d notifications for a sustained breach, want 1", len(n.sent))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	src := &fakeSource{readings: []*models.Reading{polledReading(20, 0.5)}}
	loop := newLoop(src, newMemStore(), &fakeNotifier{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
}
