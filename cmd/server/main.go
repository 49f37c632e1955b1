package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"futsal-sim-service/internal/config"
	"futsal-sim-service/internal/logging"
	"futsal-sim-service/internal/server"
)

const appVersion = "dev"

func main() {
	logger := logging.NewLogger(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: "futsal-sim-service",
		Version: appVersion,
	})

	cfg, err := config.Load()
	if err != nil {
		logging.Error(logger, "invalid configuration", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logging.Error(logger, "server startup failed", err)
		os.Exit(1)
	}
	srv.Run(ctx, stop)
}
