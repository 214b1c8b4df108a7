package json

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
)

func sampleReport() *domain.Report {
	modified := domain.ResourceModified
	return &domain.Report{
		Kind:       domain.ReportDifference,
		StackName:  "AppStack",
		StackID:    "arn:aws:cloudformation:us-east-1:123:stack/AppStack/1",
		Heading:    "AppStack Stack Resources",
		Banner:     &domain.Banner{Text: "Drift Detected", URL: "https://console/drifts"},
		DriftMode:  true,
		StackDrift: domain.StackDrifted,
		AnyDrift:   true,
		Rows: []domain.ReconciliationRow{
			{Classification: domain.ChangeCreate, Type: "AWS::S3::Bucket", LogicalID: "WebBucket", DisplayName: "web"},
			{Classification: domain.ChangeNoChange, DriftStatus: &modified, Type: "AWS::SQS::Queue", LogicalID: "Jobs"},
		},
	}
}

func TestReporter_EncodesReport(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewReporterWithWriter(Config{}, &buf, log.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, SinkTypeJSON, r.Type())

	require.NoError(t, r.Publish(context.Background(), sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "AppStack", decoded["stack_name"])
	assert.Equal(t, "DRIFTED", decoded["stack_drift"])
	assert.Equal(t, map[string]any{"WILL_CREATE": float64(1), "NO_CHANGE": float64(1)}, decoded["summary"])

	rows := decoded["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{
		"change":      "WILL_CREATE",
		"type":        "AWS::S3::Bucket",
		"logical_id":  "WebBucket",
		"physical_id": "web",
	}, rows[0])
	assert.Equal(t, "MODIFIED", rows[1].(map[string]any)["drift"])
}

func TestReporter_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.ndjson")
	r, err := NewReporter(Config{Path: path}, log.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, r.Publish(context.Background(), sampleReport()))
	require.NoError(t, r.Publish(context.Background(), sampleReport()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 2, lines)
}
