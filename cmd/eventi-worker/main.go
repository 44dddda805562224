package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"eventi/internal/amqp"
	"eventi/internal/cli"
	"eventi/internal/clock"
	applog "eventi/internal/log"
	"eventi/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentExport)

	logger.Info("Starting eventi-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	repo := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	w := worker.NewExportWorker(repo, clock.NewSystem(), cfg.ExportDir)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx, amqpClient)
	})

	// Safety net for lost feed messages.
	g.Go(func() error {
		w.RunPeriodic(gctx, cfg.ExportInterval)
		return nil
	})

	logger.Info("Export worker running",
		"export_dir", cfg.ExportDir,
		"export_interval", cfg.ExportInterval.String(),
		"queue", cfg.AMQPQueue)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
