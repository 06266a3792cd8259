package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"murmur/internal/app/registry"
	"murmur/internal/app/server"
	"murmur/internal/app/worker"
	"murmur/internal/config"
	"murmur/internal/core/contracts"
	"murmur/internal/core/services"
	"murmur/internal/platform/logger"
	"murmur/internal/platform/telemetry"
	"murmur/internal/plugins/memory"
	"murmur/internal/plugins/postgres"
	redisPlugin "murmur/internal/plugins/redis"
	"murmur/pkg/logging"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", logging.Err(err))
		os.Exit(1)
	}

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", logging.Err(err))
	}
	defer func() {
		if otelShutdown == nil {
			return
		}
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", logging.Err(err))
		}
	}()

	// Infra
	var pdb *sql.DB
	if pdb, err = postgres.New(ctx, cfg.Postgres); err != nil {
		log.Error("postgres connection failed", logging.Err(err))
		return
	}
	defer pdb.Close()
	log.Info("postgres connected")

	hub := registry.NewRegistry(log)

	var (
		store     contracts.PresenceStore
		queue     contracts.TaskQueue
		scheduler contracts.Scheduler
	)
	if cfg.Redis.URL == "" {
		log.Warn("redis not configured, presence kept in memory and scheduling disabled")
		store = memory.NewPresenceStore(time.Minute)
	} else {
		var rdb *redis.Client
		if rdb, err = redisPlugin.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Error("redis connection failed", logging.Err(err))
			return
		}
		defer rdb.Close()
		log.Info("redis connected")
		store = redisPlugin.NewRedisPresenceStore(rdb)
		q := redisPlugin.NewRedisTaskQueue(rdb, log, 0)
		queue, scheduler = q, q
	}

	// Adapters
	userRepo := postgres.NewUserRepository(pdb)
	roomRepo := postgres.NewRoomRepository(pdb)
	notifRepo := postgres.NewNotificationRepository(pdb)
	tokenRepo := postgres.NewTokenRepository(pdb)

	// Core Services
	txManager := services.NewTxManager(pdb)
	tokenSvc := services.NewTokenService(log, cfg.SecretToken, tokenRepo)
	presenceSvc := services.NewPresenceService(log, store, hub, cfg.Presence.TTL, cfg.Presence.Timeout)
	dispatcher := services.NewDispatcherService(log, presenceSvc, hub)
	notifSvc := services.NewNotificationService(log, notifRepo, presenceSvc, dispatcher, hub)
	sessions := services.NewRoomManager(log, roomRepo)
	roomSvc := services.NewRoomService(log, roomRepo, sessions, txManager)

	// Server
	srv := server.NewServer(log, *cfg, server.Deps{
		Tokens:        tokenSvc,
		Users:         userRepo,
		Registry:      hub,
		Presence:      presenceSvc,
		Rooms:         roomSvc,
		Sessions:      sessions,
		Notifications: notifSvc,
		Scheduler:     scheduler,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if queue != nil {
		wrkr := worker.NewTaskWorker(log, queue, notifSvc, cfg.Worker)
		g.Go(func() error { return wrkr.Run(gctx) })
	}
	if err := g.Wait(); err != nil {
		log.Error("application stopped with error", logging.Err(err))
		return
	}
	log.Info("application stopped")
}
