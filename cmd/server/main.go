package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/retail-core/internal/adapter/handler"
	"github.com/rl1809/retail-core/internal/adapter/storage"
	"github.com/rl1809/retail-core/internal/config"
	"github.com/rl1809/retail-core/internal/core/service"
	"github.com/rl1809/retail-core/internal/port"
	"github.com/rl1809/retail-core/internal/scheduler"
	"github.com/rl1809/retail-core/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "path to an optional .env file")
	flag.Parse()

	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping mysql", zap.Error(err))
	}
	log.Info("connected to mysql")

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatal("failed to apply migrations", zap.Error(err))
	}
	log.Info("schema migrations applied")

	store := storage.NewMySQLStore(db)

	// Redis is optional; without it, order submission skips idempotency
	// checking.
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		cache = storage.NewRedisAdapter(rdb)
		log.Info("connected to redis")
	} else {
		log.Warn("REDIS_ADDR not set, order idempotency checking disabled")
	}

	// Services
	catalogSvc := service.NewCatalogService(store, logger.Named(log, "catalog"))
	inventorySvc := service.NewInventoryService(store, logger.Named(log, "inventory"))
	orderSvc := service.NewOrderService(store, inventorySvc, cache, logger.Named(log, "orders"))
	reportingSvc := service.NewReportingService(store, logger.Named(log, "reporting"))

	// Background reconciliation
	sched := scheduler.New(store, cfg.Reconcile.CronSchedule, logger.Named(log, "scheduler"))
	sched.Start()

	// HTTP server
	h := handler.NewHTTPHandler(catalogSvc, inventorySvc, orderSvc, reportingSvc, logger.Named(log, "http"))
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: h.Router(),
	}

	go func() {
		log.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("http server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}
	log.Info("http server stopped")

	sched.Stop()

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Info("connections closed")
}
