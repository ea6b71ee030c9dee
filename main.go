package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/observability/metrics"
	"github.com/FACorreiaa/tourism-dashboard/internal/pkg/config"
	"github.com/FACorreiaa/tourism-dashboard/internal/server"
	"github.com/FACorreiaa/tourism-dashboard/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if err = logger.Init(level, zap.String("service", server.ServiceName)); err != nil {
		return err
	}
	defer logger.Log.Sync()

	otelShutdown, err := server.InitObservability(cfg.Observability, logger.Log)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger.Log)
	if err != nil {
		return err
	}
	defer srv.Close()

	router := server.SetupRouter(cfg, srv.Repository(), logger.Log, metrics.Get())
	if err = SetupAssets(router); err != nil {
		return err
	}
	srv.SetRouter(router)

	server.StartPprofServer(cfg.Observability.PprofAddr, logger.Log)

	httpServer := srv.HTTPServer()

	done := make(chan struct{})
	go server.GracefulShutdown(ctx, httpServer, logger.Log, done)

	logger.Log.Info("Server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("driver", cfg.Repositories.Driver),
		zap.String("join_policy", string(cfg.Dashboard.JoinPolicy)))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("Server error", zap.Error(err))
		stop()
	}

	<-done
	logger.Log.Info("Graceful shutdown complete")

	return nil
}
