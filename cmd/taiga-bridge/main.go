package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alphaomegateam/taiga-bridge/internal/actions"
	"github.com/alphaomegateam/taiga-bridge/internal/config"
	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/metrics"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
	"github.com/alphaomegateam/taiga-bridge/internal/tools"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Str("taiga_base_url", cfg.TaigaBaseURL).
		Bool("actions_enabled", cfg.ActionsEnabled()).
		Msg("starting taiga bridge")

	factory := taiga.NewFactory(cfg.TaigaBaseURL, cfg.TaigaUsername, cfg.TaigaPassword, logger)
	store := gateway.NewIdempotencyStore(cfg.IdempotencyTTL)
	m := metrics.New()

	mcpServer := tools.NewServer(factory, store, m, logger)
	mcpHandler := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	srv := actions.NewServer(actions.ServerConfig{
		ListenAddr:   cfg.ListenAddr,
		ActionAPIKey: cfg.ActionAPIKey,
	}, factory, m, mcpHandler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
	}

	logger.Info().Msg("taiga bridge stopped")
}
