package httpapi

import (
	"github.com/foxseedlab/vclog/internal/stats"
	"github.com/foxseedlab/vclog/internal/usage"
)

type channelUsageResponse struct {
	ChannelID    int64   `json:"channel_id"`
	ChannelName  string  `json:"channel_name"`
	DurationHour float64 `json:"duration_hour"`
}

type dailyChannelUsageResponse struct {
	Date         string  `json:"date"`
	ChannelID    int64   `json:"channel_id"`
	ChannelName  string  `json:"channel_name"`
	DurationHour float64 `json:"duration_hour"`
}

type channelRankResponse struct {
	Rank         int     `json:"rank"`
	ChannelID    int64   `json:"channel_id"`
	ChannelName  string  `json:"channel_name"`
	DurationHour float64 `json:"duration_hour"`
}

type userRankResponse struct {
	Rank         int     `json:"rank"`
	UserID       int64   `json:"user_id"`
	DurationHour float64 `json:"duration_hour"`
}

type dailyUsageResponse struct {
	Date         string  `json:"date"`
	DurationHour float64 `json:"duration_hour"`
}

type monthlyReportResponse struct {
	TotalHour  float64              `json:"total_hour"`
	DailyUsage []dailyUsageResponse `json:"daily_usage"`
}

func toChannelUsages(in []stats.ChannelUsage) []channelUsageResponse {
	out := make([]channelUsageResponse, 0, len(in))
	for _, u := range in {
		out = append(out, channelUsageResponse{
			ChannelID:    u.ChannelID,
			ChannelName:  u.ChannelName,
			DurationHour: usage.Hours(u.Duration),
		})
	}
	return out
}

func toDailyChannelUsages(in []stats.DailyChannelUsage) []dailyChannelUsageResponse {
	out := make([]dailyChannelUsageResponse, 0, len(in))
	for _, u := range in {
		out = append(out, dailyChannelUsageResponse{
			Date:         u.Date.String(),
			ChannelID:    u.ChannelID,
			ChannelName:  u.ChannelName,
			DurationHour: usage.Hours(u.Duration),
		})
	}
	return out
}

func toChannelRanks(in []stats.ChannelRank) []channelRankResponse {
	out := make([]channelRankResponse, 0, len(in))
	for _, r := range in {
		out = append(out, channelRankResponse{
			Rank:         r.Rank,
			ChannelID:    r.ChannelID,
			ChannelName:  r.ChannelName,
			DurationHour: usage.Hours(r.Duration),
		})
	}
	return out
}

func toUserRanks(in []stats.UserRank) []userRankResponse {
	out := make([]userRankResponse, 0, len(in))
	for _, r := range in {
		out = append(out, userRankResponse{
			Rank:         r.Rank,
			UserID:       r.UserID,
			DurationHour: usage.Hours(r.Duration),
		})
	}
	return out
}

func toMonthlyReport(report stats.MonthlyReport) monthlyReportResponse {
	daily := make([]dailyUsageResponse, 0, len(report.Daily))
	for _, d := range report.Daily {
		daily = append(daily, dailyUsageResponse{
			Date:         d.Date.String(),
			DurationHour: usage.Hours(d.Duration),
		})
	}
	return monthlyReportResponse{
		TotalHour:  usage.Hours(report.TotalDuration),
		DailyUsage: daily,
	}
}
