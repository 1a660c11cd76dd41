package cleanup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	pkgbigquery "github.com/prylogi/logi-backend/pkg/bigquery"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// ReportRow is one cleanup run summary persisted for reporting.
type ReportRow struct {
	RunID       string    `bigquery:"run_id"`
	Job         string    `bigquery:"job"`
	Scanned     int       `bigquery:"scanned"`
	Deleted     int       `bigquery:"deleted"`
	Failed      int       `bigquery:"failed"`
	StartedAt   time.Time `bigquery:"started_at"`
	FinishedAt  time.Time `bigquery:"finished_at"`
	ReportedAt  time.Time `bigquery:"reported_at"`
	Environment string    `bigquery:"environment"`
}

// RetryPolicy controls how many times report inserts are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// ReportWriter persists cleanup run summaries to BigQuery with bounded
// retries. Reporting is best effort; callers log and move on when it fails.
type ReportWriter struct {
	client tableInserter
	table  string
	retry  RetryPolicy
}

// NewReportWriter builds a writer targeting the cleanup reports table.
func NewReportWriter(client *pkgbigquery.Client, table string, retry RetryPolicy) (*ReportWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("cleanup reports table is required")
	}

	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = retry.InitialBackoff
	}

	return &ReportWriter{client: client, table: table, retry: retry}, nil
}

// Write inserts one report row, retrying transient BigQuery failures.
func (w *ReportWriter) Write(ctx context.Context, row ReportRow) error {
	if row.ReportedAt.IsZero() {
		row.ReportedAt = time.Now().UTC()
	}

	attempts := 0
	backoff := w.retry.InitialBackoff

	for {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		err := w.client.InsertRows(ctx, w.table, []any{&row})
		if err == nil {
			return nil
		}

		attempts++
		if attempts >= w.retry.MaxAttempts || !isRetryableBigQueryError(err) {
			return fmt.Errorf("insert cleanup report: %w", err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		timer.Stop()

		backoff = minDuration(backoff*2, w.retry.MaximumBackoff)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func isRetryableBigQueryError(err error) bool {
	if err == nil {
		return false
	}

	var multi *cbigquery.MultiError
	if errors.As(err, &multi) {
		if multi == nil || len(*multi) == 0 {
			return false
		}
		for _, inner := range *multi {
			if !isRetryableBigQueryError(inner) {
				return false
			}
		}
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusTooManyRequests:
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
