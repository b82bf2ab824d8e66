package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/vclog/internal/config"
	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const storeInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (eventlog.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), storeInitTimeout)
		defer cancel()

		switch cfg.EventLogBackend {
		case eventlog.BackendCSV:
			return NewCSVStore(cfg.EventLogPath, cfg.Location()), nil
		case eventlog.BackendPostgres:
			return openPostgresStore(ctx, cfg.DatabaseURL)
		case eventlog.BackendRedis:
			return OpenRedisStore(ctx, cfg.RedisURL, cfg.RedisEventLogKey)
		default:
			return nil, fmt.Errorf("unsupported event log backend %q", cfg.EventLogBackend)
		}
	})
}

func openPostgresStore(ctx context.Context, databaseURL string) (eventlog.Store, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigration(ctx, p); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return NewPostgresStore(p), nil
}
