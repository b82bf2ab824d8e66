package eventlog

import (
	"context"

	"github.com/foxseedlab/vclog/internal/presence"
)

const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Reader returns one coherent snapshot of the log in append order.
// A missing or empty log yields an empty slice and a nil error.
type Reader interface {
	Load(ctx context.Context) ([]presence.PresenceEvent, error)
}

type Writer interface {
	Append(ctx context.Context, events ...presence.PresenceEvent) error
}

type Store interface {
	Reader
	Writer
	Close() error
}
