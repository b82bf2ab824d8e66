package usage

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/foxseedlab/vclog/internal/presence"
)

const dateLayout = "2006-01-02"

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

type GroupBy int

const (
	ByChannel GroupBy = iota
	ByDateChannel
	ByUser
	ByDate
)

func (g GroupBy) String() string {
	switch g {
	case ByChannel:
		return "channel"
	case ByDateChannel:
		return "date_channel"
	case ByUser:
		return "user"
	case ByDate:
		return "date"
	default:
		return fmt.Sprintf("GroupBy(%d)", int(g))
	}
}

// Date is a calendar day in the query's location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(safeLocation(loc)).Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Compare(o Date) int {
	if c := cmp.Compare(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, o.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, o.Day)
}

// Key holds the grouping dimensions; fields not used by a GroupBy stay zero.
type Key struct {
	Date        Date
	ChannelID   int64
	ChannelName string
	UserID      int64
}

func (k Key) Compare(o Key) int {
	if c := k.Date.Compare(o.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(k.ChannelID, o.ChannelID); c != 0 {
		return c
	}
	if c := cmp.Compare(k.ChannelName, o.ChannelName); c != 0 {
		return c
	}
	return cmp.Compare(k.UserID, o.UserID)
}

type Group struct {
	Key      Key
	Duration time.Duration
}

func (g Group) Hours() float64 {
	return Hours(g.Duration)
}

// Aggregate sums session durations per group. Sessions are selected by start
// time only; a nil window selects everything. Groups come back ordered by key.
func Aggregate(sessions []presence.Session, window *Window, groupBy GroupBy, loc *time.Location) []Group {
	sums := make(map[Key]time.Duration)
	for _, s := range Filter(sessions, window) {
		sums[keyFor(s, groupBy, loc)] += s.Duration
	}

	groups := make([]Group, 0, len(sums))
	for k, d := range sums {
		groups = append(groups, Group{Key: k, Duration: d})
	}
	slices.SortFunc(groups, func(a, b Group) int {
		return a.Key.Compare(b.Key)
	})
	return groups
}

func keyFor(s presence.Session, groupBy GroupBy, loc *time.Location) Key {
	switch groupBy {
	case ByDateChannel:
		return Key{Date: DateOf(s.StartTime, loc), ChannelID: s.ChannelID, ChannelName: s.ChannelName}
	case ByUser:
		return Key{UserID: s.UserID}
	case ByDate:
		return Key{Date: DateOf(s.StartTime, loc)}
	default:
		return Key{ChannelID: s.ChannelID, ChannelName: s.ChannelName}
	}
}

func Filter(sessions []presence.Session, window *Window) []presence.Session {
	if window == nil {
		return sessions
	}
	out := make([]presence.Session, 0, len(sessions))
	for _, s := range sessions {
		if window.Contains(s.StartTime) {
			out = append(out, s)
		}
	}
	return out
}

func Total(sessions []presence.Session, window *Window) time.Duration {
	var total time.Duration
	for _, s := range Filter(sessions, window) {
		total += s.Duration
	}
	return total
}

func Hours(d time.Duration) float64 {
	return d.Hours()
}

// SortByDurationDesc orders groups by descending duration, keeping key order on ties.
func SortByDurationDesc(groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Compare(b.Duration, a.Duration)
	})
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
