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

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/icp-finder/internal/auth"
	"github.com/octobees/icp-finder/internal/bootstrap"
	"github.com/octobees/icp-finder/internal/config"
	"github.com/octobees/icp-finder/internal/database"
	"github.com/octobees/icp-finder/internal/handler"
	"github.com/octobees/icp-finder/internal/logger"
	middlewarepkg "github.com/octobees/icp-finder/internal/middleware"
	"github.com/octobees/icp-finder/internal/render"
	"github.com/octobees/icp-finder/internal/repository"
	"github.com/octobees/icp-finder/internal/router"
	"github.com/octobees/icp-finder/internal/search"
	"github.com/octobees/icp-finder/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cache search.Cache
	if cfg.RedisAddr != "" {
		rdb, err := database.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zl.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		cache = search.NewRedisCache(rdb)
	}

	var sessionsRepo repository.SessionsRepository
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			zl.Fatal("failed to connect database", zap.Error(err))
		}
		defer pool.Close()

		pgRepo := repository.NewPGXSessionsRepository(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			zl.Fatal("failed to prepare session schema", zap.Error(err))
		}
		sessionsRepo = pgRepo
	} else {
		zl.Info("DATABASE_URL not set, sessions are kept in memory")
		sessionsRepo = repository.NewMemorySessionsRepository()
	}

	pipeline, err := bootstrap.Build(ctx, cfg, zl, cache)
	if err != nil {
		zl.Fatal("failed to build search pipeline", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	sessionService := service.NewSessionService(sessionsRepo, pipeline.Finder, render.DefaultSummaryLimit)

	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(cfg.ServiceName),
		Search:   handler.NewSearchHandler(pipeline.Finder, zl),
		Sessions: handler.NewSessionHandler(sessionService, jwtManager, zl),
		Outreach: handler.NewOutreachHandler(pipeline.Drafter),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(zl))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Request-ID"},
	}))

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("service", cfg.ServiceName), zap.String("port", cfg.Port))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
