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

	"go.uber.org/zap"

	_ "github.com/noah-isme/transport-request-api/api/swagger"
	"github.com/noah-isme/transport-request-api/internal/bootstrap"
	"github.com/noah-isme/transport-request-api/pkg/config"
	"github.com/noah-isme/transport-request-api/pkg/database"
	"github.com/noah-isme/transport-request-api/pkg/logger"
)

// @title Transportation Request API
// @version 1.0.0
// @description Student transportation requests for parents, district staff and administrators
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Open(cfg, true, logr)
	if err != nil {
		logr.Fatal("failed to connect backing stores", zap.Error(err))
	}
	defer deps.Close(logr)

	applied, err := database.Migrate(ctx, deps.DB)
	if err != nil {
		logr.Fatal("migrations failed", zap.Error(err))
	}
	if len(applied) > 0 {
		logr.Info("migrations applied", zap.Strings("versions", applied))
	}

	services, err := bootstrap.BuildServices(cfg, deps, logr)
	if err != nil {
		logr.Fatal("failed to build services", zap.Error(err))
	}
	services.Activity.Start(context.Background())
	defer services.Activity.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           bootstrap.BuildRouter(cfg, services, logr),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
