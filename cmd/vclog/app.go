package main

import (
	"fmt"
	"log/slog"
	"os"

	configloader "github.com/foxseedlab/vclog/external/config"
	"github.com/foxseedlab/vclog/external/discord"
	eventlogimpl "github.com/foxseedlab/vclog/external/eventlog"
	webhookimpl "github.com/foxseedlab/vclog/external/webhook"
	"github.com/foxseedlab/vclog/internal/config"
	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/foxseedlab/vclog/internal/httpapi"
	"github.com/foxseedlab/vclog/internal/stats"
	"github.com/foxseedlab/vclog/internal/tracker"
	"github.com/samber/do/v2"
)

func loadConfig() (*config.Config, error) {
	slog.Info("startup: loading configuration")
	cfg, err := configloader.Load()
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "event_log_backend", cfg.EventLogBackend, "timezone", cfg.Timezone)
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	slog.Info("startup: building dependency graph")
	injector := do.New()

	do.ProvideValue(injector, cfg)
	eventlogimpl.RegisterDI(injector)
	stats.RegisterDI(injector)
	discord.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	tracker.RegisterDI(injector)
	httpapi.RegisterDI(injector)
	return injector
}

// openEventLog resolves the configured store; the returned func closes it.
func openEventLog(injector do.Injector) (func(), error) {
	store, err := do.Invoke[eventlog.Store](injector)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return func() {
		if err := store.Close(); err != nil {
			slog.Error("event log close failed", "error", err)
		}
	}, nil
}
