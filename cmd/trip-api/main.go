// README: Entry point; loads config, wires the trip planner and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wayfarer/internal/config"
	httptransport "wayfarer/internal/http"
	"wayfarer/internal/infra"
	"wayfarer/internal/service"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := infra.NewLogger("trip-api", "info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := infra.NewLogger("trip-api", cfg.LogLevel)
	cfg.LogSummary(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	planner, cleanup, err := service.NewFromConfig(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("wire planner")
	}
	defer cleanup()

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Planner:        planner,
		RequestTimeout: cfg.AI.Timeout*2 + cfg.Fetch.Timeout*time.Duration(cfg.Fetch.Attempts),
		Log:            log,
	})
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serve")
	}
}
