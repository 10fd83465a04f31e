package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting ledger-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	// The worker only reads; events come from the ledger binaries.
	l := cli.InitLedger(context.Background(), logger, repo, nil, cfg)
	defer l.Close()

	sinkConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export configuration", "error", err)
		os.Exit(1)
	}
	sink, err := backend.NewFactory(logger).CreateSink(context.Background(), sinkConfig)
	if err != nil {
		logger.Error("Failed to initialize export sink", "error", err, "backend", sinkConfig.Type)
		os.Exit(1)
	}
	if sink.Cleanup != nil {
		defer sink.Cleanup()
	}

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	exporter := worker.NewExportWorker(sink.Sink, repo.Queries(), cfg.CacheSize, cfg.CacheTTL)
	audit := worker.NewAuditLoop(repo.Queries(), l.Budgets, worker.AuditLoopConfig{Interval: cfg.AuditInterval})

	g, gctx := errgroup.WithContext(ctx)
	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeEvents(gctx, exporter.HandleMessage)
		})
	}
	g.Go(func() error {
		return audit.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		l.Close()
		os.Exit(1)
	}
	<-done
	logger.Info("Worker shutdown complete")
}
