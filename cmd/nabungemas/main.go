package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nabungemas/internal/backend"
	"nabungemas/internal/catalog"
	"nabungemas/internal/cli"
	apphttp "nabungemas/internal/http"
	"nabungemas/internal/log"
	"nabungemas/internal/viewmodel"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Slog()).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.LogError(ctx, "Backend cleanup failed", err, log.OpShutdown, nil)
			}
		}()
	}

	vm := viewmodel.New(result.Repository, logger)
	if err := vm.Refresh(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	options := catalog.NewFromDir(cfg.DataDir)
	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               cfg.Addr(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ConfirmTTL:         cfg.ConfirmTTL,
		Version:            cfg.AppVersion,
		Logger:             logger,
	}, vm, options)
	if err != nil {
		return err
	}

	logger.Info("Starting "+apphttp.AppName,
		"addr", cfg.Addr(),
		"backend", cfg.DataBackend,
		"version", cfg.AppVersion,
		log.FieldOperation, log.OpStartup)
	if err := cli.Serve(ctx, logger, srv, shutdownTimeout); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
