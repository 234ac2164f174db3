package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minierp/console-gateway/internal/api"
	"github.com/minierp/console-gateway/internal/api/metrics"
	"github.com/minierp/console-gateway/internal/core/ports"
	"github.com/minierp/console-gateway/internal/core/service"
	"github.com/minierp/console-gateway/internal/infrastructure/backend"
	"github.com/minierp/console-gateway/internal/infrastructure/config"
	mongodb "github.com/minierp/console-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/minierp/console-gateway/internal/infrastructure/db/redis"
	"github.com/minierp/console-gateway/internal/infrastructure/queue"
	"github.com/minierp/console-gateway/pkg/logger"
)

func main() {
	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.SessionSecret == "" {
		log.Fatal().Msg("SESSION_SECRET is required; sessions must be tamper-evident")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	erp := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)

	// --- Services ---
	sessions := service.NewSessionService(redisdb.NewSessionRepository(rdb), cfg.SessionSecret)
	verifier := service.NewAuthService(erp)

	recorder := queue.NewRecorder(mongodb.NewAuditRepository(db), log)
	recorder.Start(ctx)

	monitor := service.NewInactivityMonitor(cfg.IdleTimeout, func(sessionID string) {
		expireCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sessions.ExpireByID(expireCtx, sessionID); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("inactivity expiry failed")
			return
		}
		metrics.SessionsEndedTotal.WithLabelValues("inactivity").Inc()
		metrics.ActiveSessions.Dec()
		recorder.Record(ports.AuditEvent{
			Kind:      ports.AuditSessionExpired,
			SessionID: sessionID,
			Reason:    "inactivity",
			At:        time.Now().UTC(),
		})
	}, log)

	e := api.NewRouter(api.Deps{
		Verifier: verifier,
		Sessions: sessions,
		Backend:  erp,
		Monitor:  monitor,
		Audit:    recorder,
		Mongo:    db,
		Redis:    rdb,
		Log:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("console gateway started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	monitor.Shutdown()
	_ = rdb.Close()
	_ = mongoClient.Disconnect(shutdownCtx)
}
