package presence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownAction = errors.New("unknown presence action")

type Action string

const (
	ActionJoin  Action = "join"
	ActionLeave Action = "leave"
)

func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionJoin:
		return ActionJoin, nil
	case ActionLeave:
		return ActionLeave, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// PresenceEvent is one immutable row of the append-only presence log.
type PresenceEvent struct {
	UserID      int64
	ChannelID   int64
	ChannelName string
	Action      Action
	Timestamp   time.Time
}

type Session struct {
	UserID      int64
	ChannelID   int64
	ChannelName string
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
