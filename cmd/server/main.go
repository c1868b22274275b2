package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/allyhaasmessimer/liesel-blog/config"
	"github.com/allyhaasmessimer/liesel-blog/internal/api/handler"
	"github.com/allyhaasmessimer/liesel-blog/internal/api/router"
	"github.com/allyhaasmessimer/liesel-blog/internal/cache"
	"github.com/allyhaasmessimer/liesel-blog/internal/repository"
	"github.com/allyhaasmessimer/liesel-blog/internal/service"
	"github.com/allyhaasmessimer/liesel-blog/internal/storage"
	"github.com/allyhaasmessimer/liesel-blog/pkg/database"
	"github.com/allyhaasmessimer/liesel-blog/pkg/jwtx"
	"github.com/allyhaasmessimer/liesel-blog/pkg/logger"
)

// @title liesel-blog API
// @version 1.0
// @description 博客服务 REST API
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if cfg.Trace.Endpoint != "" {
		tp, err := initTracer(cfg.Trace.Endpoint)
		if err != nil {
			logger.Warn("tracer init failed", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(ctx)
			}()
		}
	}

	// 存储连接进程内只打开一次，所有请求共用
	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unavailable, cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	covers, err := storage.NewCoverStore(cfg.Upload.Dir)
	if err != nil {
		logger.Fatal("init cover store", zap.Error(err))
	}

	tokens := jwtx.NewTokenService(cfg.JWT.Secret)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	postCache := cache.NewPostCache(redisClient)
	authSvc := service.NewAuthService(userRepo, tokens)
	postSvc := service.NewPostService(postRepo, covers, postCache)
	h := handler.New(authSvc, postSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router.New(cfg, h, tokens),
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func initTracer(endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(context.Background(), otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp, nil
}
