package main

import (
	"os"
	"os/signal"
	"syscall"

	"lelang/internal/config"
	"lelang/internal/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting server")
		if err := app.Fiber.Listen(cfg.App.Port); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	if err := app.Close(); err != nil {
		log.Error().Err(err).Msg("Error releasing resources")
	}
	log.Info().Msg("Server gracefully stopped")
}
