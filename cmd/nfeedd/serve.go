package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kestrelhq/nfeed/internal/server"
	"github.com/kestrelhq/nfeed/internal/storage"
	"github.com/kestrelhq/nfeed/internal/xslog"
)

const (
	keyPort  = "port"
	keyStore = "store"

	wsShutdownGracePeriod = 2 * time.Second
)

func runServe(cmd *cobra.Command, args []string) error {
	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx := cmd.Context()

	cfg, err := server.ReadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	store, storeName, err := initStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close store", xslog.Error(err))
		}
	}()

	srv := server.New(store, cfg.Token, logger)

	shutdownCoordinator := server.NewShutdownCoordinator(wsShutdownGracePeriod)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       0, // disabled for WebSocket; deadlines set per-connection
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return shutdownCoordinator.BaseContext()
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting broker",
			xslog.Version(),
			slog.String(keyPort, cfg.Port),
			slog.String(keyStore, storeName))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")

		// cancel base context and wait grace period for sockets to say goodbye
		shutdownCoordinator.InitiateShutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "broker stopped")
	return nil
}

func initStore(ctx context.Context, cfg server.Config, logger *slog.Logger) (storage.NotificationStore, string, error) {
	if cfg.RedisURL == "" {
		logger.InfoContext(ctx, "initializing in-memory store")
		return storage.NewMemoryStore(), "memory", nil
	}

	logger.InfoContext(ctx, "initializing redis store")
	client, err := storage.NewRedisClient(ctx, storage.RedisConfig{URL: cfg.RedisURL})
	if err != nil {
		return nil, "", err
	}
	return storage.NewRedisStore(client), "redis", nil
}
