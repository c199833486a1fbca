package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpMetrics "fairFin/app/echo-server/metrics"
	"fairFin/app/echo-server/router"
	"fairFin/business/artifact"
	"fairFin/business/review"
	"fairFin/internal/middleware"
	"fairFin/internal/repository"
	"fairFin/internal/rest"
	"fairFin/pkg/config"
	"fairFin/pkg/logger"
	"fairFin/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting "+cfg.App.Name, "version", cfg.App.Version)

	metrics.Init()
	httpMetrics.Init()

	// Init artifact store
	backend, err := repository.OpenBackend(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to open artifact store", "error", err)
	}

	// Init service
	mode, err := review.ParseExplainerMode(cfg.Model.ExplainerMode)
	if err != nil {
		logger.Fatal("Invalid explainer mode", "error", err)
	}

	var invalidator review.Invalidator
	if backend.Cache != nil {
		invalidator = backend.Cache
	}

	bundles := artifact.NewCache(artifact.NewLoader(backend.Store))
	reviewService := review.NewReviewService(bundles, invalidator, review.Config{
		Version:     cfg.Model.Version,
		Mode:        mode,
		DefaultTopN: cfg.Model.DefaultTopN,
	})

	// Warm the cache; a missing bundle is reported per request, not fatal here
	if info, err := reviewService.Info(context.Background()); err != nil {
		logger.Warn("Artifact bundle not loaded at startup", "version", cfg.Model.Version, "error", err)
	} else {
		logger.Info("Artifact bundle loaded", "version", info.Version, "token", info.Token, "warnings", info.Warnings)
	}

	// Init handler
	reviewHandler := rest.NewReviewHandler(reviewService)
	artifactAdminHandler := rest.NewArtifactAdminHandler(reviewService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Trace())
	e.Use(httpMetrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))

	// Auth middleware
	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)

	// Setup routes
	router.SetOpsRoutes(e)
	api := e.Group("/api/v1")
	router.SetReviewRoutes(api, reviewHandler, authRequired, middleware.ReviewerOnly())
	router.SetArtifactAdminRoutes(api, artifactAdminHandler, authRequired, middleware.AdminOnly())

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := backend.Close(); err != nil {
		logger.Error("Artifact store close error", "error", err)
	}

	logger.Info("Server stopped")
}
