package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pawshearts/internal/bootstrap"
	"pawshearts/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if cfg.LedgerDriver == infra.DriverFile {
		logger.Fatal().Msg("worker: the file store is single-process, run the API with WORKER_INLINE=true instead")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to open store")
	}
	defer rt.Close()

	publisher, err := bootstrap.Publisher(ctx, cfg, rt.Runner, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build publisher")
	}

	if err := bootstrap.Worker(cfg, rt.Store, publisher, logger).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("worker: stopped with error")
	}
}
