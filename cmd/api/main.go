package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/clinic-scheduler/internal/db"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinic-scheduler/internal/mailer"
	"github.com/BruksfildServices01/clinic-scheduler/internal/routes"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := logger.New(cfg.LogLevel, cfg.Env)
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	httperr.ShowDetails = cfg.IsDevelopment()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validators.RegisterBindings(); err != nil {
		zl.Fatal("register validators", zap.Error(err))
	}

	db, err := dbpkg.NewDB(cfg, zl)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}

	store, err := newStore(cfg, zl)
	if err != nil {
		zl.Fatal("storage", zap.Error(err))
	}

	sender, err := newMailer(cfg, zl)
	if err != nil {
		zl.Fatal("mailer", zap.Error(err))
	}

	revocations, closeRevocations := newRevocations(cfg, zl)
	defer closeRevocations()

	dispatcher := audit.NewDispatcher(audit.New(db), zl)

	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		DB:          db,
		Config:      cfg,
		Logger:      zl,
		Tokens:      auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		Revocations: revocations,
		Store:       store,
		Mailer:      sender,
		Audit:       dispatcher,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Info("server listening",
			zap.String("addr", cfg.Addr()),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.StorageDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}

	dispatcher.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newStore(cfg *config.Config, zl *zap.Logger) (storage.Store, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3Store(storage.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3PathStyle,
			PublicURL:    cfg.S3PublicURL,
		}, storage.WithS3Logger(zl))
	}
	return storage.NewLocalStore(cfg.UploadDir, "/uploads", storage.WithLocalLogger(zl))
}

func newMailer(cfg *config.Config, zl *zap.Logger) (mailer.Sender, error) {
	if !cfg.MailEnabled() {
		zl.Info("SMTP not configured, e-mail disabled")
		return mailer.NewNoopSender(zl), nil
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPUser,
	})
}

// newRevocations uses Redis when configured and reachable, memory otherwise.
func newRevocations(cfg *config.Config, zl *zap.Logger) (auth.Revocations, func()) {
	if !cfg.RedisEnabled() {
		return auth.NewMemoryRevocations(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zl.Warn("redis unreachable, falling back to in-memory token revocation", zap.Error(err))
		_ = client.Close()
		return auth.NewMemoryRevocations(), func() {}
	}

	return auth.NewRedisRevocations(client), func() { _ = client.Close() }
}
