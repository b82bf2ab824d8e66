package eventlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/vclog/internal/presence"
	"github.com/gofrs/flock"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestCSVStore_MissingFileIsEmpty(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "absent.csv"), time.UTC)
	events, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Fatalf("expected empty events, got %#v", events)
	}
}

func TestCSVStore_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vc_logs.csv")
	writeFile(t, path, "")
	events, err := NewCSVStore(path, time.UTC).Load(context.Background())
	if err != nil || len(events) != 0 {
		t.Fatalf("unexpected result: %#v %v", events, err)
	}
}

func TestCSVStore_AppendThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "vc_logs.csv")
	store := NewCSVStore(path, time.UTC)
	ctx := context.Background()
	at := time.Date(2025, 2, 10, 20, 0, 0, 123456789, time.UTC)

	if err := store.Append(ctx, presence.PresenceEvent{
		UserID: 411, ChannelID: 9001, ChannelName: "勉強部屋, 1", Action: presence.ActionJoin, Timestamp: at,
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.Append(ctx, presence.PresenceEvent{
		UserID: 411, ChannelID: 9001, ChannelName: "勉強部屋, 1", Action: presence.ActionLeave, Timestamp: at.Add(time.Hour),
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if strings.Count(string(raw), "user_id,timestamp,action,channel_id,channel_name") != 1 {
		t.Fatalf("expected exactly one header line, got:\n%s", raw)
	}

	events, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ChannelName != "勉強部屋, 1" || events[0].Action != presence.ActionJoin || !events[0].Timestamp.Equal(at) {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Action != presence.ActionLeave || events[1].UserID != 411 {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestCSVStore_ToleratesExtraColumnsAndNaiveTimestamps(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	path := filepath.Join(t.TempDir(), "vc_logs.csv")
	writeFile(t, path, "channel_name,guild,user_id,timestamp,action,channel_id\n"+
		"study,g1,1,2025-02-10 20:00:00.250000,join,10\n"+
		"study,g1,1,2025-02-10T21:00:00+09:00,LEAVE,10\n")

	events, err := NewCSVStore(path, tokyo).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}
	wantJoin := time.Date(2025, 2, 10, 20, 0, 0, 250000000, tokyo)
	if !events[0].Timestamp.Equal(wantJoin) {
		t.Fatalf("expected %s, got %s", wantJoin, events[0].Timestamp)
	}
	sessions := presence.Reconstruct(events)
	if len(sessions) != 1 || sessions[0].Duration != time.Hour-250*time.Millisecond {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestCSVStore_MalformedRowFailsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vc_logs.csv")
	writeFile(t, path, "user_id,timestamp,action,channel_id,channel_name\n"+
		"1,2025-02-10 20:00:00,join,10,study\n"+
		"1,2025-02-10 21:00:00,teleport,10,study\n")

	_, err := NewCSVStore(path, time.UTC).Load(context.Background())
	if !errors.Is(err, presence.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line number in error, got %v", err)
	}

	writeFile(t, path, "user_id,timestamp,action,channel_id,channel_name\n1,yesterday,join,10,study\n")
	if _, err := NewCSVStore(path, time.UTC).Load(context.Background()); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}

func TestCSVStore_MissingColumnFailsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vc_logs.csv")
	writeFile(t, path, "user_id,timestamp,action,channel\n1,2025-02-10 20:00:00,join,study\n")
	if _, err := NewCSVStore(path, time.UTC).Load(context.Background()); err == nil {
		t.Fatal("expected error for missing channel_id column")
	}
}

func TestCSVStore_WaitsForForeignLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vc_logs.csv")
	writeFile(t, path, "user_id,timestamp,action,channel_id,channel_name\n")
	store := NewCSVStore(path, time.UTC)

	// Another process holding the writer lock.
	other := flock.New(path + ".lock")
	if err := other.Lock(); err != nil {
		t.Fatalf("failed to lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := store.Load(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected load to wait for the lock, got %v", err)
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel2()
	ev := presence.PresenceEvent{UserID: 1, ChannelID: 10, ChannelName: "a", Action: presence.ActionJoin, Timestamp: time.Now()}
	if err := store.Append(ctx2, ev); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected append to wait for the lock, got %v", err)
	}

	if err := other.Unlock(); err != nil {
		t.Fatalf("failed to unlock: %v", err)
	}
	if err := store.Append(context.Background(), ev); err != nil {
		t.Fatalf("append failed after unlock: %v", err)
	}
	events, err := store.Load(context.Background())
	if err != nil || len(events) != 1 {
		t.Fatalf("unexpected result after unlock: %+v %v", events, err)
	}
}

func TestCSVStore_SeparateWriterAndReaderSeeWholeBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vc_logs.csv")
	writer := NewCSVStore(path, time.UTC)
	reader := NewCSVStore(path, time.UTC)
	ctx := context.Background()
	at := time.Date(2025, 2, 10, 20, 0, 0, 0, time.UTC)
	name := strings.Repeat("長いチャンネル名", 64)

	const batches = 50
	var wg sync.WaitGroup
	wg.Add(1)
	errc := make(chan error, 1)
	go func() {
		defer wg.Done()
		for i := range batches {
			ts := at.Add(time.Duration(i) * time.Minute)
			if err := writer.Append(ctx,
				presence.PresenceEvent{UserID: 1, ChannelID: 10, ChannelName: name, Action: presence.ActionLeave, Timestamp: ts},
				presence.PresenceEvent{UserID: 1, ChannelID: 20, ChannelName: name, Action: presence.ActionJoin, Timestamp: ts},
			); err != nil {
				errc <- err
				return
			}
		}
	}()

	for range batches {
		events, err := reader.Load(ctx)
		if err != nil {
			t.Fatalf("load during append failed: %v", err)
		}
		if len(events)%2 != 0 {
			t.Fatalf("load observed a partial batch: %d events", len(events))
		}
	}
	wg.Wait()
	select {
	case err := <-errc:
		t.Fatalf("append failed: %v", err)
	default:
	}

	events, err := reader.Load(ctx)
	if err != nil || len(events) != 2*batches {
		t.Fatalf("expected %d events, got %d (%v)", 2*batches, len(events), err)
	}
}
