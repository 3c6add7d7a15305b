package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
	"go-chi-calculator/internal/session"

	"go.uber.org/zap"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {

	ctx := context.Background()

	// Config
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics, OTLP logs
	telemetryShutdown, err := initTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		observability.Logger.Fatal("init telemetry", zap.Error(err))
	}
	defer telemetryShutdown(ctx)

	// Sessions
	store, err := openStore(cfg)
	if err != nil {
		observability.Logger.Fatal("open session store", zap.Error(err))
	}
	defer store.Close()

	sessions := calculator.NewSessions(session.NewService(store, cfg.MaxRetries))
	if err := sessions.TrackExisting(ctx); err != nil {
		observability.Logger.Fatal("count stored sessions", zap.Error(err))
	}

	// Router
	router := server.NewRouter(sessions, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.ListenAddr),
			zap.String("store", cfg.Store),
			zap.Bool("telemetry", cfg.Telemetry),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	observability.Logger.Info("server stopped")
}
