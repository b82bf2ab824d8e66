package eventlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/foxseedlab/vclog/internal/presence"
	"github.com/gofrs/flock"
)

const (
	columnUserID      = "user_id"
	columnTimestamp   = "timestamp"
	columnAction      = "action"
	columnChannelID   = "channel_id"
	columnChannelName = "channel_name"
)

const lockRetryDelay = 20 * time.Millisecond

var csvHeader = []string{columnUserID, columnTimestamp, columnAction, columnChannelID, columnChannelName}

// Naive timestamps (no offset) are read in the store's location.
var naiveTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// CSVStore is shared by the bot (writer) and the API server (reader), which
// run as separate processes. A flock on "<path>.lock" orders them; mu only
// covers goroutines of one process.
type CSVStore struct {
	path string
	loc  *time.Location
	mu   sync.RWMutex
}

func (s *CSVStore) lockPath() string {
	return s.path + ".lock"
}

// Each call opens its own handle; Flock keeps lock state per handle.
func (s *CSVStore) lock(ctx context.Context, shared bool) (*flock.Flock, error) {
	fl := flock.New(s.lockPath())
	var (
		ok  bool
		err error
	)
	if shared {
		ok, err = fl.TryRLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = fl.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("lock event log: %w", err)
	}
	if !ok {
		return nil, errors.New("lock event log: not acquired")
	}
	return fl, nil
}

func NewCSVStore(path string, loc *time.Location) eventlog.Store {
	if loc == nil {
		loc = time.UTC
	}
	return &CSVStore{path: path, loc: loc}
}

func (s *CSVStore) Append(ctx context.Context, events ...presence.PresenceEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create event log directory: %w", err)
		}
	}
	fl, err := s.lock(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		_ = fl.Unlock()
	}()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat event log: %w", err)
	}

	// The batch goes out in one write so a move's leave and join land together.
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = w.Write(csvHeader)
	}
	for _, ev := range events {
		_ = w.Write([]string{
			strconv.FormatInt(ev.UserID, 10),
			ev.Timestamp.Format(time.RFC3339Nano),
			string(ev.Action),
			strconv.FormatInt(ev.ChannelID, 10),
			ev.ChannelName,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode event log: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write event log: %w", err)
	}
	return f.Close()
}

func (s *CSVStore) Load(ctx context.Context) ([]presence.PresenceEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]presence.PresenceEvent, 0)
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return events, nil
		}
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	fl, err := s.lock(ctx, true)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = fl.Unlock()
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return events, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read event log header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read event log: %w", err)
		}
		line, _ := r.FieldPos(0)
		ev, err := s.parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("event log line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *CSVStore) Close() error {
	return nil
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		cols[strings.ToLower(name)] = i
	}
	for _, required := range csvHeader {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("event log header is missing column %q", required)
		}
	}
	return cols, nil
}

func (s *CSVStore) parseRecord(record []string, cols map[string]int) (presence.PresenceEvent, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	userID, err := strconv.ParseInt(field(columnUserID), 10, 64)
	if err != nil {
		return presence.PresenceEvent{}, fmt.Errorf("invalid user_id: %w", err)
	}
	channelID, err := strconv.ParseInt(field(columnChannelID), 10, 64)
	if err != nil {
		return presence.PresenceEvent{}, fmt.Errorf("invalid channel_id: %w", err)
	}
	action, err := presence.ParseAction(field(columnAction))
	if err != nil {
		return presence.PresenceEvent{}, err
	}
	ts, err := s.parseTimestamp(field(columnTimestamp))
	if err != nil {
		return presence.PresenceEvent{}, err
	}
	return presence.PresenceEvent{
		UserID:      userID,
		ChannelID:   channelID,
		ChannelName: field(columnChannelName),
		Action:      action,
		Timestamp:   ts,
	}, nil
}

func (s *CSVStore) parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	for _, layout := range naiveTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
