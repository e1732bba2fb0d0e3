package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/log"
	"storefront/internal/queue"
	"storefront/internal/repository"
	"storefront/internal/storage"
	"storefront/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "worker")

	ctx := context.Background()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	photoStore, err := storage.NewPhotoStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init photo store")
	}

	processor := tasks.NewProcessor(
		repository.NewOrderRepository(dbPool),
		repository.NewProductRepository(dbPool),
		photoStore,
		client,
		cfg,
		logger,
	)
	consumer := queue.NewConsumer(client, cfg.Worker, logger, processor)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := consumer.Start(runCtx); err != nil && err != context.Canceled {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-runCtx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
