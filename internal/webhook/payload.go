package webhook

import (
	"github.com/foxseedlab/vclog/internal/stats"
	"github.com/foxseedlab/vclog/internal/usage"
)

func NewMonthlyReportPayload(report stats.MonthlyReport, timezone string) MonthlyReportPayload {
	daily := make([]DailyUsagePayload, 0, len(report.Daily))
	for _, d := range report.Daily {
		daily = append(daily, DailyUsagePayload{
			Date:         d.Date.String(),
			DurationHour: usage.Hours(d.Duration),
		})
	}
	return MonthlyReportPayload{
		SchemaVersion: MonthlyReportSchemaVersion,
		Year:          report.Year,
		Month:         int(report.Month),
		Timezone:      timezone,
		TotalHour:     usage.Hours(report.TotalDuration),
		DailyUsage:    daily,
	}
}
