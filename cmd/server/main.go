package main // Entry point package

import (
	"context"
	"errors"
	"log" // used until the zap logger exists
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/taskboard/internal/config"
	"github.com/iliyamo/taskboard/internal/logger"
	"github.com/iliyamo/taskboard/internal/queue"
	"github.com/iliyamo/taskboard/internal/repository"
	"github.com/iliyamo/taskboard/internal/router"
	"github.com/iliyamo/taskboard/internal/service"
)

func main() {
	cfg, err := config.Load() // .env, CONFIG_FILE and environment
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(cfg.Redis)
	if cfg.Redis.Enabled && rdb == nil {
		lg.Warn("redis unreachable, rate limiting and caching disabled", zap.Stringer("redis", cfg.Redis))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	if cfg.Events.ConsumerEnabled {
		go func() {
			if err := queue.StartTaskConsumer(ctx, cfg.Events, lg); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("task consumer stopped", zap.Error(err))
			}
		}()
	}

	events := service.NewDispatcher(service.NewPublisher(cfg.Events, lg), service.DefaultPublishTimeout, lg)
	e := router.New(router.Deps{
		Config: cfg,
		Tasks:  repository.NewTaskRepo(repository.DefaultSeed()...),
		Events: events,
		Redis:  rdb,
		Log:    lg,
	})

	go func() {
		lg.Info("listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
	// No new events after Shutdown; flush the ones still in flight.
	if err := events.Wait(shutdownCtx); err != nil {
		lg.Warn("pending task events dropped", zap.Error(err))
	}
}
