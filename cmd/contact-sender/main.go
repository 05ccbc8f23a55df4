package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/sacola-ideias/internal/app/contactsender"
	"github.com/magabrotheeeer/sacola-ideias/internal/config"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting contact sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := contactsender.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize contact sender", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("contact sender stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("contact sender stopped gracefully")
}
