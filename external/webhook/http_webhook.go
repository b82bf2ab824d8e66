package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/vclog/internal/webhook"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "vclog-monthly-report"

	schemaVersionHeader = "X-Vclog-Schema-Version"

	// Enough of an error body to show the receiver's reason in logs.
	maxErrorBodyBytes = 1024
)

// StatusError reports a non-2xx answer from the report receiver.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("monthly report webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("monthly report webhook returned status %d: %s", e.StatusCode, e.Body)
}

type HTTPSender struct {
	webhookURL string
	client     *http.Client
}

func NewHTTPSender(webhookURL string) webhook.Sender {
	return &HTTPSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

func (s *HTTPSender) SendMonthlyReport(ctx context.Context, payload webhook.MonthlyReportPayload) error {
	if s.webhookURL == "" {
		return nil
	}

	req, err := s.newReportRequest(ctx, payload)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post monthly report: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func (s *HTTPSender) newReportRequest(ctx context.Context, payload webhook.MonthlyReportPayload) (*http.Request, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode monthly report: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(schemaVersionHeader, strconv.Itoa(payload.SchemaVersion))
	return req, nil
}
