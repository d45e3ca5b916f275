package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/together/config"
	"github.com/d60-Lab/together/internal/api"
	"github.com/d60-Lab/together/internal/api/handler"
	"github.com/d60-Lab/together/internal/cache"
	"github.com/d60-Lab/together/internal/repository"
	"github.com/d60-Lab/together/internal/service"
	"github.com/d60-Lab/together/internal/storage"
	"github.com/d60-Lab/together/pkg/database"
	"github.com/d60-Lab/together/pkg/logger"
	pkgredis "github.com/d60-Lab/together/pkg/redis"
	"github.com/d60-Lab/together/pkg/tracing"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

// @title Together Engagement API
// @version 1.0
// @description Social graph and engagement service for Together with AI.
// @BasePath /
func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Log.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Log.SentryDSN}); err != nil {
			panic(err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing := must(tracing.Init(ctx, cfg))
	defer func() { _ = shutdownTracing(ctx) }()

	db := must(database.InitDB(cfg))
	rdb := must(pkgredis.Init(cfg))
	blob := must(storage.New(cfg))

	// repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// services
	fanCache := cache.NewFollowerCache(db, rdb, cfg.Notifications.CacheTTL)
	opTimeout := cfg.Engagement.OpTimeout
	userSvc := service.NewUserService(userRepo, opTimeout)
	relSvc := service.NewRelationshipService(db, followRepo, fanRepo, fanCache, opTimeout)
	engSvc := service.NewEngagementService(db, likeRepo, opTimeout)
	commentSvc := service.NewCommentService(db, commentRepo, opTimeout)
	notifSvc := service.NewNotificationService(db, notifRepo, rdb, cfg.Notifications.PageLimit, opTimeout)
	modSvc := service.NewModerationService(db, reportRepo, opTimeout)
	publisher := service.NewPublisher(db, opTimeout)

	trigger := service.NewTriggerWorker(db, notifSvc, cfg.Moderation.ReportThreshold, 2, 64, 100*time.Millisecond)
	stopTrigger := trigger.Start()

	h := handler.New(userSvc, relSvc, engSvc, commentSvc, notifSvc, modSvc, publisher, trigger, fanCache, blob, postRepo)
	router := api.NewRouter(cfg, h)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server exited", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = stopTrigger(shutdownCtx)
	_ = srv.Shutdown(shutdownCtx)
}
