package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/znodanilo2017-byte/harvest-guard/internal/config"
	"github.com/znodanilo2017-byte/harvest-guard/internal/dashboard"
	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("dashboard")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	server := dashboard.NewServer(dashboard.ServerConfig{
		Reader: dashboard.NewReader(st, dashboard.DefaultWindow),
		Addr:   cfg.ListenAddr,
	})

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		log.Info().Msg("shutting down")
		cancel()
	}()

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("dashboard server error")
	}
}
