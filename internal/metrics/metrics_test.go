package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
)

func TestRecorder_ObserveReport(t *testing.T) {
	r := New()
	r.ObserveReport(&domain.Report{
		Kind:   domain.ReportDifference,
		Banner: &domain.Banner{Text: "Drift Detected"},
		Rows: []domain.ReconciliationRow{
			{Classification: domain.ChangeCreate},
			{Classification: domain.ChangeCreate},
			{Classification: domain.ChangeDestroy},
		},
	})
	r.ObserveReport(&domain.Report{Kind: domain.ReportResourceList})
	r.ObserveReport(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Reports.WithLabelValues("difference")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Reports.WithLabelValues("resource_list")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Rows.WithLabelValues("WILL_CREATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Rows.WithLabelValues("WILL_DESTROY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DriftedStacks))
}

func TestRecorder_DriftAndFailures(t *testing.T) {
	r := New()
	r.ObserveDriftDetection(domain.StackDrifted)
	r.ObserveDriftDetection(domain.StackDriftUnknown)
	r.ObserveDriftDetection(domain.StackDrifted)
	r.ObserveDriftAttempts(3)
	r.ObservePublishFailure("s3")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.DriftDetections.WithLabelValues("DRIFTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DriftDetections.WithLabelValues("UNKNOWN")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.DriftAttempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PublishFailures.WithLabelValues("s3")))
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := New()
	r.ObserveRun(time.Now().Add(-2*time.Second), errors.New("failed"))
	assert.GreaterOrEqual(t, testutil.ToFloat64(r.RunDuration), 2.0)
	assert.Zero(t, testutil.ToFloat64(r.LastRunSuccess))

	r.ObserveRun(time.Now(), nil)
	assert.Positive(t, testutil.ToFloat64(r.LastRunSuccess))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.ObservePublishFailure("markdown")

	path := filepath.Join(t.TempDir(), "cfn_diff.prom")
	require.NoError(t, r.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `cfn_diff_publish_failures_total{sink="markdown"} 1`)
}

func TestRecorder_WriteTextfileError(t *testing.T) {
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "cfn_diff.prom"))
	assert.Error(t, err)
}
