package webhook

import "context"

const MonthlyReportSchemaVersion = 1

type DailyUsagePayload struct {
	Date         string  `json:"date"`
	DurationHour float64 `json:"duration_hour"`
}

type MonthlyReportPayload struct {
	SchemaVersion int                 `json:"schema_version"`
	Year          int                 `json:"year"`
	Month         int                 `json:"month"`
	Timezone      string              `json:"timezone"`
	TotalHour     float64             `json:"total_hour"`
	DailyUsage    []DailyUsagePayload `json:"daily_usage"`
}

type Sender interface {
	SendMonthlyReport(ctx context.Context, payload MonthlyReportPayload) error
}
