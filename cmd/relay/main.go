package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/znodanilo2017-byte/harvest-guard/internal/config"
	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/middleware"
	"github.com/znodanilo2017-byte/harvest-guard/internal/relay"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("relay")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	handler := relay.NewHandler(relay.HandlerConfig{
		Sink: store.NewWriter(st),
	})

	mux := http.NewServeMux()
	mux.Handle("/ingest", middleware.Chain(
		handler,
		middleware.Recovery,
		middleware.Logging,
	))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		log.Info().Msg("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
		cancel()
	}()

	log.Info().Str("addr", cfg.ListenAddr).Str("bucket", cfg.Bucket).Msg("relay server starting")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("relay server error")
	}
	<-ctx.Done()
}
