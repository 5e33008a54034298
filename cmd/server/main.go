// Package main runs the voice session API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/riftvoice/backend/config"
	"github.com/riftvoice/backend/internal/auth"
	"github.com/riftvoice/backend/internal/middleware"
	"github.com/riftvoice/backend/internal/realtime"
	"github.com/riftvoice/backend/internal/riot"
	"github.com/riftvoice/backend/internal/server"
	"github.com/riftvoice/backend/internal/sessions"
	"github.com/riftvoice/backend/internal/worker"
	"github.com/riftvoice/backend/pkg/database"
	"github.com/riftvoice/backend/pkg/kv"
	"github.com/riftvoice/backend/pkg/logging"
	"github.com/riftvoice/backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("load config", zap.Error(err))
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("logger", zap.Error(err))
	}
	defer logger.Sync()
	gin.SetMode(gin.ReleaseMode)

	// Background loops stop with this context.
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	ctx := context.Background()
	var store kv.Store
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		kvStore := database.NewKVStore(pool, cfg.Store.TTL)
		go worker.NewJanitor(kvStore, cfg.Database.PurgeInterval, logger).Run(bgCtx)
		store = kvStore
	default:
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Store.TTL, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		store = rdb
	}

	outbound := &http.Client{Timeout: cfg.Riot.HTTPTimeout}
	var identity sessions.IdentityResolver
	if cfg.Riot.ValidationEnabled() {
		identity = riot.NewClient(cfg.Riot, outbound, logger)
	} else {
		logger.Warn("RIOT_GAME_API_KEY not set, handles are not verified")
		identity = riot.Passthrough{DDragonVersion: cfg.Riot.DDragonVersion}
	}
	broker := realtime.New(cfg.Realtime, logger)

	svc := sessions.NewService(sessions.NewRepository(store), broker, identity, cfg.Sessions, logger)

	var limiter *middleware.IPRateLimiter
	if cfg.Server.RateLimitRPS > 0 {
		limiter = middleware.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst)
		go limiter.RunSweeper(bgCtx, time.Minute)
	}

	router := server.NewRouter(cfg.Server, server.Handlers{
		Sessions: sessions.NewHandler(svc, logger),
		Auth:     auth.NewHandler(cfg.Riot, outbound, logger),
	}, limiter, broker.Mode(), logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("mode", broker.Mode()),
			zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	bgCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
