package pipeline

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/alerts"
	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/metrics"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
	"github.com/znodanilo2017-byte/harvest-guard/internal/notify"
	"github.com/znodanilo2017-byte/harvest-guard/internal/source"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

// Loop is the pull-path orchestrator: fetch, persist, evaluate, notify, then
// sleep a fixed interval. Single-threaded and strictly sequential — a slow
// fetch delays the next tick instead of overlapping it.
type Loop struct {
	src       source.Source
	sink      *store.Writer
	evaluator *alerts.Evaluator
	notifier  notify.Notifier
	tracker   *alerts.Tracker
	interval  time.Duration
}

// LoopConfig wires the loop's collaborators. Everything is injected so tests
// can substitute fakes.
type LoopConfig struct {
	Source    source.Source
	Sink      *store.Writer
	Evaluator *alerts.Evaluator
	Notifier  notify.Notifier

	// Tracker, when set, switches alerting from re-fire-every-tick to
	// fire-on-transition.
	Tracker *alerts.Tracker

	Interval time.Duration
}

// NewLoop builds the poll loop.
func NewLoop(cfg LoopConfig) *Loop {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Loop{
		src:       cfg.Source,
		sink:      cfg.Sink,
		evaluator: cfg.Evaluator,
		notifier:  cfg.Notifier,
		tracker:   cfg.Tracker,
		interval:  interval,
	}
}

// Run blocks until the context is cancelled. Each tick is crash-isolated:
// a failure or panic inside one tick is logged and the loop carries on.
func (l *Loop) Run(ctx context.Context) error {
	log := logger.WithComponent("pipeline")
	log.Info().Dur("interval", l.interval).Msg("poll loop started")

	for {
		l.Tick(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("poll loop stopped")
			return ctx.Err()
		case <-time.After(l.interval):
		}
	}
}

// Tick runs one fetch/persist/evaluate/notify cycle.
func (l *Loop) Tick(ctx context.Context) {
	log := logger.WithComponent("pipeline")
	metrics.TicksTotal.Inc()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("tick panic recovered")
			metrics.PanicsRecovered.WithLabelValues("pipeline").Inc()
		}
	}()

	reading, err := l.src.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, source.ErrNoReading) {
			log.Error().Err(err).Msg("fetch failed")
		}
		return
	}

	log.Info().
		Str("device_id", reading.DeviceID).
		Float64("temperature", reading.Metric(models.MetricTemperature)).
		Float64("moisture", reading.MoistureFraction()).
		Msg("reading received")

	// A failed write is logged and abandoned for this cycle; it neither
	// stops the loop nor suppresses threshold evaluation.
	key, err := l.sink.WriteReading(ctx, store.NamespacePolled, reading)
	if err != nil {
		log.Error().Err(err).Msg("store write failed")
	} else {
		log.Info().Str("key", key).Msg("reading stored")
	}

	events := l.evaluator.Evaluate(reading)
	if l.tracker != nil {
		events = l.tracker.Filter(events)
	}

	for _, ev := range events {
		if err := l.notifier.Send(ctx, ev); err != nil {
			log.Error().Err(err).Str("metric", ev.MetricName).Msg("notify failed")
			continue
		}
		log.Info().Str("metric", ev.MetricName).Str("value", ev.Value).Msg("alert sent")
	}
}
