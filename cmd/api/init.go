package main

import (
	"context"
	"errors"
	"fmt"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

// initTelemetry starts the OTLP trace, metric and log pipelines and registers
// the domain metric instruments. With telemetry disabled the global no-op
// providers stay in place and only the instruments are created.
func initTelemetry(ctx context.Context, enabled bool) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if enabled {
		for _, start := range []func(context.Context) (func(context.Context) error, error){
			observability.InitTracing,
			observability.InitMetrics,
			observability.InitLogging,
		} {
			stop, err := start(ctx)
			if err != nil {
				_ = shutdown(ctx)
				return nil, err
			}
			shutdowns = append(shutdowns, stop)
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

// openStore returns the session store selected by configuration.
func openStore(cfg config.Config) (session.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := session.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return session.NewMemoryStore(), nil
	}
}
