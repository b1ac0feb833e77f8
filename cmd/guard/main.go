package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/znodanilo2017-byte/harvest-guard/internal/alerts"
	"github.com/znodanilo2017-byte/harvest-guard/internal/config"
	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/notify"
	"github.com/znodanilo2017-byte/harvest-guard/internal/pipeline"
	"github.com/znodanilo2017-byte/harvest-guard/internal/source"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("guard")

	// The only fatal error class: missing notifier credentials, checked
	// once before the loop begins.
	if err := cfg.ValidateNotifier(); err != nil {
		log.Fatal().Err(err).Msg("refusing to start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	loopCfg := pipeline.LoopConfig{
		Source: source.NewOpenMeteo(source.OpenMeteoConfig{
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
			DeviceID:  cfg.DeviceID,
		}),
		Sink: store.NewWriter(st),
		Evaluator: alerts.NewEvaluator(alerts.EvaluatorConfig{
			LocationLabel: cfg.LocationLabel,
		}),
		Notifier: notify.NewTelegram(notify.TelegramConfig{
			Token:  cfg.TelegramToken,
			ChatID: cfg.TelegramChatID,
		}),
		Interval: cfg.PollInterval,
	}
	if cfg.AlertOnTransition {
		loopCfg.Tracker = alerts.NewTracker()
	}
	loop := pipeline.NewLoop(loopCfg)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listener starting")
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics listener error")
			}
		}()
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		log.Info().Msg("shutting down")
		cancel()
	}()

	log.Info().Str("device_id", cfg.DeviceID).Msg("🚜 harvest-guard sensor started")
	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("poll loop exited")
	}
}
