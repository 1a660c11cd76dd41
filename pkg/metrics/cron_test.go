package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("expiry-sweep", 1500*time.Millisecond)
	m.IncSuccess("expiry-sweep")
	m.IncFailure("orphan-sweep")
	m.AddDeleted("auto-expiry", 3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	success := byName["cron_job_success"]
	if success == nil || len(success.Metric) != 1 {
		t.Fatalf("expected one success series, got %+v", success)
	}
	if got := success.Metric[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("success counter = %v", got)
	}

	failure := byName["cron_job_failure"]
	if failure == nil || failure.Metric[0].GetCounter().GetValue() != 1 {
		t.Fatalf("failure counter missing or wrong: %+v", failure)
	}

	deleted := byName["cron_objects_deleted_total"]
	if deleted == nil || deleted.Metric[0].GetCounter().GetValue() != 3 {
		t.Fatalf("deleted counter missing or wrong: %+v", deleted)
	}
	if deleted.Metric[0].GetLabel()[0].GetValue() != "auto-expiry" {
		t.Fatalf("deleted label = %+v", deleted.Metric[0].GetLabel())
	}

	duration := byName["cron_job_duration_seconds"]
	if duration == nil || duration.Metric[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("duration histogram missing or wrong: %+v", duration)
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveDuration("x", time.Second)
	m.IncSuccess("x")
	m.IncFailure("x")
	m.AddDeleted("x", 1)

	empty := NewCronJobMetrics(nil)
	empty.IncSuccess("x")
}
