package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hubln/config"
	"hubln/internal/database"
	"hubln/internal/router"
	"hubln/internal/ws"
	"hubln/pkg/cloudinary"
	"hubln/pkg/logger"
	"hubln/pkg/payment"
	"hubln/pkg/storage"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			EnableTracing:    true,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
			Environment:      cfg.Server.Env,
		}); err != nil {
			log.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	dbLogLevel := gormlogger.Warn
	if cfg.Server.IsProduction() {
		dbLogLevel = gormlogger.Error
	}
	db, err := database.NewDB(&cfg.Database, dbLogLevel)
	if err != nil {
		log.Error("database", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Error("migrate", "error", err)
		os.Exit(1)
	}
	if err := database.SeedSettings(db); err != nil {
		log.Error("seed settings", "error", err)
		os.Exit(1)
	}
	if err := database.SeedAdmin(db, &cfg.Admin); err != nil {
		log.Error("seed admin", "error", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, using in-memory rate limiting", "error", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			log.Info("redis connected", "addr", cfg.Redis.Addr)
		}
		cancel()
	}

	var images cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		images, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Error("cloudinary", "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("cloudinary disabled: announcement images cannot be uploaded")
	}

	var archive storage.Archiver
	if cfg.Storage.Enabled() {
		up, err := storage.NewUploader(storage.Config{
			Endpoint:      cfg.Storage.Endpoint,
			Region:        cfg.Storage.Region,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			Bucket:        cfg.Storage.Bucket,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			UsePathStyle:  cfg.Storage.UsePathStyle,
			Prefix:        cfg.Storage.Prefix,
		})
		if err != nil {
			log.Error("storage", "error", err)
			os.Exit(1)
		}
		archive = up
	}

	var gateway payment.Gateway
	if cfg.Asaas.APIKey != "" {
		gateway = payment.NewAsaasGateway(cfg.Asaas.BaseURL, cfg.Asaas.APIKey, cfg.Asaas.Timeout)
	} else {
		log.Warn("ASAAS_API_KEY not set, using the stub PIX gateway")
		gateway = payment.NewStubGateway()
	}

	engine := router.Setup(router.Deps{
		Config:  cfg,
		DB:      db,
		Logger:  log,
		Redis:   rdb,
		Images:  images,
		Archive: archive,
		Gateway: gateway,
		Hub:     ws.NewHub(),
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
