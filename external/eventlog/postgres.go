package eventlog

import (
	"context"
	"fmt"

	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/foxseedlab/vclog/internal/presence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) eventlog.Store {
	return &PostgresStore{pool: pool}
}

func (r *PostgresStore) Append(ctx context.Context, events ...presence.PresenceEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(
			`INSERT INTO presence_events (user_id, channel_id, channel_name, action, occurred_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			ev.UserID, ev.ChannelID, ev.ChannelName, string(ev.Action), ev.Timestamp)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *PostgresStore) Load(ctx context.Context) ([]presence.PresenceEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, channel_id, channel_name, action::text, occurred_at
		 FROM presence_events ORDER BY occurred_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]presence.PresenceEvent, 0)
	for rows.Next() {
		var (
			id     int64
			ev     presence.PresenceEvent
			action string
		)
		if err := rows.Scan(&id, &ev.UserID, &ev.ChannelID, &ev.ChannelName, &action, &ev.Timestamp); err != nil {
			return nil, err
		}
		ev.Action, err = presence.ParseAction(action)
		if err != nil {
			return nil, fmt.Errorf("presence event %d: %w", id, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *PostgresStore) Close() error {
	r.pool.Close()
	return nil
}
