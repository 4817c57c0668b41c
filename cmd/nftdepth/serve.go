package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marketlens/nftdepth/internal/cache"
	"github.com/marketlens/nftdepth/internal/config"
	"github.com/marketlens/nftdepth/internal/depth"
	httpserver "github.com/marketlens/nftdepth/internal/interfaces/http"
	"github.com/marketlens/nftdepth/internal/interfaces/http/handlers"
	"github.com/marketlens/nftdepth/internal/marketplace"
	"github.com/marketlens/nftdepth/internal/store"
	"github.com/marketlens/nftdepth/internal/telemetry/metrics"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the market-depth HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to YAML configuration")
	return cmd
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	snapshotCache := cache.NewMemory()
	if cfg.Cache.RedisAddr != "" {
		snapshotCache = cache.NewRedisAddr(cfg.Cache.RedisAddr)
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("using redis snapshot cache")
	}

	registry := metrics.NewRegistry()
	client := marketplace.NewClient(marketplace.Config{
		BaseURL:        cfg.Marketplace.BaseURL,
		RequestTimeout: time.Duration(cfg.Marketplace.RequestTimeoutSecs) * time.Second,
		RateLimitRPS:   cfg.Marketplace.RateLimitRPS,
		Burst:          cfg.Marketplace.Burst,
		MaxRetries:     cfg.Marketplace.MaxRetries,
		RetryBackoff:   time.Duration(cfg.Marketplace.RetryBackoffMS) * time.Millisecond,
		UserAgent:      cfg.Marketplace.UserAgent,
	})

	var archiver depth.Archiver
	if cfg.Archive.DSN != "" {
		snapshotStore, err := store.Open(cfg.Archive.DSN, cfg.ArchiveTimeout())
		if err != nil {
			return err
		}
		defer snapshotStore.Close()
		if err := snapshotStore.EnsureSchema(ctx); err != nil {
			return err
		}
		archiver = snapshotStore
		log.Info().Msg("snapshot archive enabled")
	}

	svc := depth.NewService(depth.ServiceConfig{
		Provider:     client,
		Cache:        snapshotCache,
		CollectionID: cfg.Collection.ID,
		Archiver:     archiver,
		Metrics:      registry,
		TTL:          cfg.CacheTTL(),
	})

	h := handlers.NewHandlers(svc, cfg.Collection.ID, cfg.StreamRefresh())
	srv := httpserver.NewServer(httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second,
	}, h, registry)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Info().
		Str("addr", srv.GetAddress()).
		Str("collection", cfg.Collection.ID).
		Msg("nftdepth serving")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
