package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/samarth-chess/internal/archive"
	appcfg "github.com/park285/samarth-chess/internal/config"
	"github.com/park285/samarth-chess/internal/httpapi"
	"github.com/park285/samarth-chess/internal/livefeed"
	"github.com/park285/samarth-chess/internal/msgcat"
	"github.com/park285/samarth-chess/internal/obslog"
	"github.com/park285/samarth-chess/internal/registry"
	"github.com/park285/samarth-chess/internal/render"
	"github.com/park285/samarth-chess/internal/store"
)

const (
	sweepInterval   = time.Minute
	idleEvictAfter  = 30 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	st, err := openStore(startCtx, cfg)
	if err != nil {
		logger.Fatal("store_init_failed", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	regCfg := registry.Config{MaxSessions: cfg.MaxSessions}
	if cfg.DatabaseURL != "" {
		repo, err := archive.NewRepository(startCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("archive_init_failed", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()
		if err := repo.EnsureSchema(startCtx); err != nil {
			logger.Fatal("archive_schema_failed", zap.Error(err))
		}
		regCfg.Archiver = repo
	}
	reg := registry.New(st, regCfg)

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("messages_init_failed", zap.Error(err))
	}

	api := httpapi.New(reg, render.New(cfg.BoardSquarePx), cat)
	feed := &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           livefeed.NewHandler(reg, cat).Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http_api_listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- api.ListenAndServe(cfg.HTTPAddr)
	}()
	go func() {
		logger.Info("livefeed_listening", zap.String("addr", cfg.WSAddr))
		if err := feed.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepLoop(sweepCtx, reg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("listener_failed", zap.Error(err))
	}

	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := feed.Shutdown(ctx); err != nil {
		logger.Warn("livefeed_shutdown_failed", zap.Error(err))
	}
	if err := api.Shutdown(ctx); err != nil {
		logger.Warn("http_api_shutdown_failed", zap.Error(err))
	}
	logger.Info("shutdown_complete")
}

func openStore(ctx context.Context, cfg *appcfg.AppConfig) (store.Store, error) {
	if cfg.RedisURL == "" {
		obslog.L().Info("store_memory", zap.Duration("ttl", cfg.SessionTTL))
		return store.NewMemoryStore(cfg.SessionTTL), nil
	}
	obslog.L().Info("store_redis", zap.Duration("ttl", cfg.SessionTTL))
	rs, err := store.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// sweepLoop drops idle sessions from memory; they stay in the store and
// are rehydrated on next use.
func sweepLoop(ctx context.Context, reg *registry.Manager) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := reg.Sweep(idleEvictAfter); n > 0 {
				obslog.L().Info("sessions_evicted", zap.Int("count", n), zap.Int("live", reg.Len()))
			}
		}
	}
}
