package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tracker/internal/cli"
	"tracker/internal/config"
	apphttp "tracker/internal/http"
	"tracker/internal/log"
	"tracker/internal/services"
	"tracker/internal/store"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)

	if err := run(logger, cfg); err != nil {
		logger.Error("Tracker stopped with error", log.FieldError, err)
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}

func run(logger *log.Logger, cfg *config.Config) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	persistence, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if persistence.Cleanup != nil {
			if err := persistence.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	opts := []services.Option{services.WithLogger(logger)}

	notifier, err := cli.InitNotifier(logger, cfg)
	if err != nil {
		// The broker may come up later; exports still work without summaries.
		logger.Warn("Notifications unavailable", log.FieldError, err)
	} else if notifier != nil {
		defer notifier.Close()
		opts = append(opts, services.WithNotifier(notifier))
	}

	sink, err := cli.InitSheets(ctx, cfg)
	if err != nil {
		return err
	}
	if sink != nil {
		opts = append(opts, services.WithSheets(sink))
	}

	ledger := services.NewLedgerService(store.New(time.Now), persistence.Persister, opts...)
	if err := ledger.Load(ctx); err != nil {
		return err
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledger, logger)
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting tracker server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"sheets", sink != nil,
			"notifications", notifier != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
