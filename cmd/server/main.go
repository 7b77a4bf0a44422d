package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cboard-backend/internal/app"
	"cboard-backend/internal/config"
	"cboard-backend/internal/logging"
	"cboard-backend/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := app.NewSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize data source", zap.Error(err))
	}
	defer closeSource()

	svc, err := app.NewService(cfg, source, logger)
	if err != nil {
		logger.Fatal("failed to initialize board service", zap.Error(err))
	}

	handler := web.New(svc, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.LogRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("data_source", cfg.DataSource))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}
