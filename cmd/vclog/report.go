package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/foxseedlab/vclog/internal/stats"
	"github.com/foxseedlab/vclog/internal/webhook"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

const (
	reportFormatJSON = "json"
	reportFormatText = "text"

	reportTimeout = 30 * time.Second
)

var (
	reportYear   int
	reportMonth  int
	reportFormat string
	reportNoSend bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a monthly usage report and post it to the report webhook",
	Long: `Build the monthly usage report for --year/--month (default: the previous
month in the configured timezone), print it, and post it as JSON to
REPORT_WEBHOOK_URL when that is set.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportYear, "year", 0, "Report year (default: year of the previous month)")
	reportCmd.Flags().IntVar(&reportMonth, "month", 0, "Report month 1-12 (default: the previous month)")
	reportCmd.Flags().StringVar(&reportFormat, "format", reportFormatJSON, "Output format: json or text")
	reportCmd.Flags().BoolVar(&reportNoSend, "no-send", false, "Do not post the report to the webhook")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportFormat != reportFormatJSON && reportFormat != reportFormatText {
		return fmt.Errorf("unsupported format %q", reportFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	injector := setupDI(cfg)

	closeLog, err := openEventLog(injector)
	if err != nil {
		return err
	}
	defer closeLog()

	svc, err := do.Invoke[*stats.Service](injector)
	if err != nil {
		return fmt.Errorf("failed to resolve stats service: %w", err)
	}
	sender, err := do.Invoke[webhook.Sender](injector)
	if err != nil {
		return fmt.Errorf("failed to resolve webhook sender: %w", err)
	}

	year, month := reportPeriod(time.Now().In(svc.Location()), reportYear, reportMonth)

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	report, err := svc.MonthlyReport(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to build monthly report: %w", err)
	}
	payload := webhook.NewMonthlyReportPayload(report, cfg.Timezone)

	out := cmd.OutOrStdout()
	if reportFormat == reportFormatText {
		writeReportText(out, payload)
	} else if err := writeReportJSON(out, payload); err != nil {
		return err
	}

	if reportNoSend || cfg.ReportWebhookURL == "" {
		return nil
	}
	if err := sender.SendMonthlyReport(ctx, payload); err != nil {
		return fmt.Errorf("failed to post monthly report: %w", err)
	}
	slog.Info("monthly report posted", "year", payload.Year, "month", payload.Month)
	return nil
}

// reportPeriod fills unset flags from the month before now.
func reportPeriod(now time.Time, year, month int) (int, int) {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	if year == 0 {
		year = prev.Year()
	}
	if month == 0 {
		month = int(prev.Month())
	}
	return year, month
}

func writeReportJSON(w io.Writer, payload webhook.MonthlyReportPayload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writeReportText(w io.Writer, payload webhook.MonthlyReportPayload) {
	heading := color.New(color.FgCyan, color.Bold)
	heading.Fprintf(w, "%04d-%02d usage report (%s)\n", payload.Year, payload.Month, payload.Timezone)
	fmt.Fprintf(w, "total: %.2fh\n", payload.TotalHour)
	if len(payload.DailyUsage) == 0 {
		color.New(color.FgYellow).Fprintln(w, "no sessions in this month")
		return
	}
	for _, d := range payload.DailyUsage {
		fmt.Fprintf(w, "  %s  %6.2fh\n", d.Date, d.DurationHour)
	}
}

