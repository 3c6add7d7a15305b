package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

const (
	defaultListenAddr = ":8080"
	defaultDBPath     = "calculator.db"
	defaultMaxRetries = 3

	envListenAddr  = "CALC_LISTEN_ADDR"
	envStore       = "CALC_STORE"
	envDBPath      = "CALC_DB_PATH"
	envLogLevel    = "CALC_LOG_LEVEL"
	envTelemetry   = "CALC_TELEMETRY"
	envCORSOrigins = "CALC_CORS_ORIGINS"
	envMaxRetries  = "CALC_MAX_RETRIES"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	Store       string
	DBPath      string
	LogLevel    zapcore.Level
	Telemetry   bool
	CORSOrigins []string
	MaxRetries  int
}

// LoadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:  defaultListenAddr,
		Store:       StoreMemory,
		DBPath:      defaultDBPath,
		LogLevel:    zapcore.InfoLevel,
		Telemetry:   true,
		CORSOrigins: []string{"*"},
		MaxRetries:  defaultMaxRetries,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envStore); v != "" {
		switch s := strings.ToLower(v); s {
		case StoreMemory, StoreSQLite:
			cfg.Store = s
		default:
			return Config{}, fmt.Errorf("%s: unknown store %q", envStore, v)
		}
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envTelemetry); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envTelemetry, err)
		}
		cfg.Telemetry = enabled
	}
	if v := os.Getenv(envCORSOrigins); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := os.Getenv(envMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s: want a positive integer, got %q", envMaxRetries, v)
		}
		cfg.MaxRetries = n
	}

	return cfg, nil
}

func parseLogLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
