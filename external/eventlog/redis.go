package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/foxseedlab/vclog/internal/presence"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the log as a list of JSON records; RPUSH appends and a
// single LRANGE reads a consistent snapshot.
type RedisStore struct {
	client *redis.Client
	key    string
}

// Pointer fields distinguish an absent key from a zero value.
type redisRecord struct {
	UserID      *int64     `json:"user_id"`
	Timestamp   *time.Time `json:"timestamp"`
	Action      string     `json:"action"`
	ChannelID   *int64     `json:"channel_id"`
	ChannelName string     `json:"channel_name"`
}

func (r redisRecord) event() (presence.PresenceEvent, error) {
	switch {
	case r.UserID == nil:
		return presence.PresenceEvent{}, errors.New("missing user_id")
	case r.ChannelID == nil:
		return presence.PresenceEvent{}, errors.New("missing channel_id")
	case r.Timestamp == nil || r.Timestamp.IsZero():
		return presence.PresenceEvent{}, errors.New("missing timestamp")
	}
	action, err := presence.ParseAction(r.Action)
	if err != nil {
		return presence.PresenceEvent{}, err
	}
	return presence.PresenceEvent{
		UserID:      *r.UserID,
		ChannelID:   *r.ChannelID,
		ChannelName: r.ChannelName,
		Action:      action,
		Timestamp:   *r.Timestamp,
	}, nil
}

func NewRedisStore(client *redis.Client, key string) eventlog.Store {
	return &RedisStore{client: client, key: key}
}

func OpenRedisStore(ctx context.Context, url, key string) (eventlog.Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client, key), nil
}

func (s *RedisStore) Append(ctx context.Context, events ...presence.PresenceEvent) error {
	if len(events) == 0 {
		return nil
	}
	values := make([]any, 0, len(events))
	for _, ev := range events {
		b, err := json.Marshal(redisRecord{
			UserID:      &ev.UserID,
			Timestamp:   &ev.Timestamp,
			Action:      string(ev.Action),
			ChannelID:   &ev.ChannelID,
			ChannelName: ev.ChannelName,
		})
		if err != nil {
			return err
		}
		values = append(values, b)
	}
	return s.client.RPush(ctx, s.key, values...).Err()
}

func (s *RedisStore) Load(ctx context.Context) ([]presence.PresenceEvent, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]presence.PresenceEvent, 0, len(raw))
	for i, item := range raw {
		var rec redisRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("presence event %d: %w", i, err)
		}
		ev, err := rec.event()
		if err != nil {
			return nil, fmt.Errorf("presence event %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
