package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/borgwatch/internal/api"
	"github.com/edvin/borgwatch/internal/auth"
	"github.com/edvin/borgwatch/internal/config"
	"github.com/edvin/borgwatch/internal/jobconfig"
	"github.com/edvin/borgwatch/internal/logging"
	"github.com/edvin/borgwatch/internal/platform"
	"github.com/edvin/borgwatch/internal/store"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "generate-api-key" {
		fmt.Println(platform.NewAPIKey())
		return
	}

	configPath := flag.String("config", "borgwatch.toml", "Path to the server config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Server.DataDir).Msg("failed to create data directory")
	}

	loader := jobconfig.NewLoader(cfg.Server.ConfigDir, logger)
	if _, err := jobconfig.LoadAll(cfg.Server.ConfigDir); err != nil {
		// Startup continues with an empty job set; the loader re-reads the
		// directory on every request, so fixing the files needs no restart.
		logger.Error().Err(err).Msg("job configuration invalid at startup")
	}

	st := store.New(cfg.Server.DataDir, loader, logger)
	authSvc := auth.NewService(cfg.Auth, loader)
	srv := api.NewServer(logger, st, authSvc)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr()).Msg("starting borgwatch server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}
