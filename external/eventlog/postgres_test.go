package eventlog

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/foxseedlab/vclog/internal/presence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// setupPostgresStore migrates into a throwaway schema so runs against a
// shared database do not see each other's rows.
func setupPostgresStore(t *testing.T) eventlog.Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(admin.Close)

	schema := fmt.Sprintf("vclog_test_%d", time.Now().UnixNano())
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+pgx.Identifier{schema}.Sanitize()+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := RunMigration(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("migration failed: %v", err)
	}
	// A second run must be a no-op.
	if err := RunMigration(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("repeated migration failed: %v", err)
	}

	store := NewPostgresStore(pool)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPostgresStore_EmptyTableIsEmpty(t *testing.T) {
	store := setupPostgresStore(t)

	events, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Fatalf("expected empty events, got %#v", events)
	}
}

func TestPostgresStore_LoadOrdersByTimeThenInsertion(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	at := time.Date(2025, 2, 10, 20, 0, 0, 0, time.UTC)

	// A move writes leave and join with one timestamp; insertion order
	// must survive the sort.
	if err := store.Append(ctx,
		presence.PresenceEvent{UserID: 1, ChannelID: 10, ChannelName: "a", Action: presence.ActionLeave, Timestamp: at},
		presence.PresenceEvent{UserID: 1, ChannelID: 20, ChannelName: "b", Action: presence.ActionJoin, Timestamp: at},
	); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// Inserted last but earliest in time.
	if err := store.Append(ctx, presence.PresenceEvent{
		UserID: 1, ChannelID: 10, ChannelName: "a", Action: presence.ActionJoin, Timestamp: at.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	events, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := []presence.PresenceEvent{
		{UserID: 1, ChannelID: 10, ChannelName: "a", Action: presence.ActionJoin, Timestamp: at.Add(-time.Hour)},
		{UserID: 1, ChannelID: 10, ChannelName: "a", Action: presence.ActionLeave, Timestamp: at},
		{UserID: 1, ChannelID: 20, ChannelName: "b", Action: presence.ActionJoin, Timestamp: at},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i := range want {
		got := events[i]
		if got.UserID != want[i].UserID || got.ChannelID != want[i].ChannelID ||
			got.ChannelName != want[i].ChannelName || got.Action != want[i].Action ||
			!got.Timestamp.Equal(want[i].Timestamp) {
			t.Fatalf("event %d: expected %+v, got %+v", i, want[i], got)
		}
	}
}

func TestPostgresStore_ReconstructsSessionsFromLoad(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	at := time.Date(2025, 2, 10, 20, 0, 0, 0, time.UTC)

	if err := store.Append(ctx,
		presence.PresenceEvent{UserID: 7, ChannelID: 10, ChannelName: "a", Action: presence.ActionJoin, Timestamp: at},
		presence.PresenceEvent{UserID: 7, ChannelID: 10, ChannelName: "a", Action: presence.ActionLeave, Timestamp: at.Add(90 * time.Minute)},
	); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	events, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	sessions := presence.Reconstruct(events)
	if len(sessions) != 1 || sessions[0].Duration != 90*time.Minute {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}
