package cleanup

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	pkgbigquery "github.com/prylogi/logi-backend/pkg/bigquery"
)

type countingInserter struct {
	calls   int
	failFor int
	err     error
}

func (c *countingInserter) InsertRows(ctx context.Context, table string, rows []any) error {
	c.calls++
	if c.calls <= c.failFor {
		return c.err
	}
	return nil
}

func TestNewReportWriterValidation(t *testing.T) {
	_, err := NewReportWriter(nil, "cleanup_reports", RetryPolicy{})
	assert.Error(t, err)

	_, err = NewReportWriter(&pkgbigquery.Client{}, "  ", RetryPolicy{})
	assert.Error(t, err)
}

func TestWriteRetriesTransientErrors(t *testing.T) {
	inserter := &countingInserter{
		failFor: 2,
		err:     &googleapi.Error{Code: http.StatusServiceUnavailable},
	}
	writer := &ReportWriter{
		client: inserter,
		table:  "cleanup_reports",
		retry: RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaximumBackoff: 2 * time.Millisecond,
		},
	}

	err := writer.Write(context.Background(), ReportRow{Job: "orphan-sweep"})
	require.NoError(t, err)
	assert.Equal(t, 3, inserter.calls)
}

func TestWriteGivesUpOnPermanentError(t *testing.T) {
	inserter := &countingInserter{
		failFor: 10,
		err:     &googleapi.Error{Code: http.StatusBadRequest},
	}
	writer := &ReportWriter{
		client: inserter,
		table:  "cleanup_reports",
		retry: RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaximumBackoff: 2 * time.Millisecond,
		},
	}

	err := writer.Write(context.Background(), ReportRow{Job: "orphan-sweep"})
	require.Error(t, err)
	assert.Equal(t, 1, inserter.calls)
}

func TestIsRetryableBigQueryError(t *testing.T) {
	assert.False(t, isRetryableBigQueryError(nil))
	assert.False(t, isRetryableBigQueryError(errors.New("schema mismatch")))
	assert.True(t, isRetryableBigQueryError(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.True(t, isRetryableBigQueryError(context.DeadlineExceeded))
}
