package presence

import (
	"slices"
	"time"
)

type pendingState struct {
	channelID   int64
	channelName string
	joinedAt    time.Time
}

// Reconstruct pairs join and leave events into sessions.
//
// Events are stable-sorted by timestamp first, so ties keep log order. A join
// always replaces the user's pending state, and a leave always clears it; only a
// leave naming the pending channel emits a session. Sessions are returned in the
// order their leave events were scanned. The input slice is not modified.
func Reconstruct(events []PresenceEvent) []Session {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b PresenceEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	sessions := make([]Session, 0)
	pending := make(map[int64]pendingState)
	for _, ev := range sorted {
		switch ev.Action {
		case ActionJoin:
			pending[ev.UserID] = pendingState{
				channelID:   ev.ChannelID,
				channelName: ev.ChannelName,
				joinedAt:    ev.Timestamp,
			}
		case ActionLeave:
			st, ok := pending[ev.UserID]
			if !ok {
				continue
			}
			delete(pending, ev.UserID)
			if st.channelID != ev.ChannelID {
				continue
			}
			name := ev.ChannelName
			if name == "" {
				name = st.channelName
			}
			sessions = append(sessions, Session{
				UserID:      ev.UserID,
				ChannelID:   ev.ChannelID,
				ChannelName: name,
				StartTime:   st.joinedAt,
				EndTime:     ev.Timestamp,
				Duration:    ev.Timestamp.Sub(st.joinedAt),
			})
		}
	}
	return sessions
}
