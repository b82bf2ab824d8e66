package stats

import (
	"time"

	"github.com/foxseedlab/vclog/internal/usage"
)

const RankingLimit = 10

type ChannelUsage struct {
	ChannelID   int64
	ChannelName string
	Duration    time.Duration
}

type DailyChannelUsage struct {
	Date        usage.Date
	ChannelID   int64
	ChannelName string
	Duration    time.Duration
}

type ChannelRank struct {
	Rank        int
	ChannelID   int64
	ChannelName string
	Duration    time.Duration
}

type UserRank struct {
	Rank     int
	UserID   int64
	Duration time.Duration
}

type DailyUsage struct {
	Date     usage.Date
	Duration time.Duration
}

type MonthlyReport struct {
	Year          int
	Month         time.Month
	TotalDuration time.Duration
	Daily         []DailyUsage
}

type UserSummary struct {
	UserID int64
	Today  time.Duration
	Week   time.Duration
	Total  time.Duration
}
