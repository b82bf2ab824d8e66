package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxseedlab/vclog/internal/webhook"
)

func TestSendMonthlyReport_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendMonthlyReport(context.Background(), webhook.MonthlyReportPayload{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendMonthlyReport_Success(t *testing.T) {
	var got webhook.MonthlyReportPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if v := r.Header.Get("X-Vclog-Schema-Version"); v != "1" {
			t.Fatalf("unexpected schema version header: %q", v)
		}
		if ua := r.Header.Get("User-Agent"); ua != "vclog-monthly-report" {
			t.Fatalf("unexpected user agent: %q", ua)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	payload := webhook.MonthlyReportPayload{
		SchemaVersion: webhook.MonthlyReportSchemaVersion,
		Year:          2025,
		Month:         2,
		Timezone:      "Asia/Tokyo",
		TotalHour:     1.5,
		DailyUsage:    []webhook.DailyUsagePayload{{Date: "2025-02-10", DurationHour: 1.5}},
	}
	sender := NewHTTPSender(server.URL)
	if err := sender.SendMonthlyReport(context.Background(), payload); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Year != 2025 || got.Month != 2 || got.TotalHour != 1.5 || len(got.DailyUsage) != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendMonthlyReport_Non2xxIncludesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("unknown schema_version\n"))
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendMonthlyReport(context.Background(), webhook.MonthlyReportPayload{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest || statusErr.Body != "unknown schema_version" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
	if want := "monthly report webhook returned status 400: unknown schema_version"; err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestSendMonthlyReport_LongErrorBodyIsTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 10*maxErrorBodyBytes)))
	}))
	defer server.Close()

	err := NewHTTPSender(server.URL).SendMonthlyReport(context.Background(), webhook.MonthlyReportPayload{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway || len(statusErr.Body) != maxErrorBodyBytes {
		t.Fatalf("unexpected status error: code=%d body=%d bytes", statusErr.StatusCode, len(statusErr.Body))
	}
}

func TestSendMonthlyReport_EmptyErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewHTTPSender(server.URL).SendMonthlyReport(context.Background(), webhook.MonthlyReportPayload{})
	if err == nil || err.Error() != "monthly report webhook returned status 500" {
		t.Fatalf("unexpected error: %v", err)
	}
}
