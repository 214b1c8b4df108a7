package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	apperrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
)

func modified() *domain.ResourceDriftStatus {
	s := domain.ResourceModified
	return &s
}

func driftReport() *domain.Report {
	return &domain.Report{
		Kind:      domain.ReportDifference,
		StackName: "AppStack",
		StackURL:  "https://example.test/stackinfo?stackId=a&b",
		Banner:    &domain.Banner{Text: "Drift Detected", URL: "https://example.test/drifts"},
		Columns:   []domain.Column{domain.ColumnDiff, domain.ColumnDrift, domain.ColumnType, domain.ColumnLogicalID, domain.ColumnPhysicalID},
		Rows: []domain.ReconciliationRow{
			{Classification: domain.ChangeCreate, Type: "AWS::S3::Bucket", LogicalID: "WebBucket", DisplayName: "web"},
			{Classification: domain.ChangeNoChange, DriftStatus: modified(), Type: "AWS::SQS::Queue", LogicalID: "Jobs", DisplayName: "jobs"},
		},
		Details: []domain.DetailBlock{{Title: "Resource Difference", Body: "[+] AWS::S3::Bucket <WebBucket>"}},
	}
}

func TestRender_DifferenceReport(t *testing.T) {
	out := Render(driftReport())

	assert.Contains(t, out, `<h1>:books: <a href="https://example.test/stackinfo?stackId=a&amp;b">AppStack Stack</a> Resources</h1>`)
	assert.Contains(t, out, `<h3>:fire: <a href="https://example.test/drifts">Drift Detected</a> :fire:</h3>`)
	assert.Contains(t, out, "<tr><th>Diff</th><th>Drift</th><th>Type</th><th>Logical ID</th><th>Physical ID</th></tr>")
	assert.Contains(t, out, "<tr><td>:sparkles: Create</td><td></td><td>AWS::S3::Bucket</td><td>WebBucket</td><td>web</td></tr>")
	assert.Contains(t, out, "<tr><td></td><td>:fire: MODIFIED</td><td>AWS::SQS::Queue</td><td>Jobs</td><td>jobs</td></tr>")
	assert.Contains(t, out, "<details><summary>Resource Difference</summary><pre>[+] AWS::S3::Bucket &lt;WebBucket&gt;</pre></details>")
}

func TestRender_ResourceListPlaceholder(t *testing.T) {
	out := Render(&domain.Report{
		Kind:        domain.ReportResourceList,
		StackName:   "NewStack",
		Subheading:  "Resource List",
		Placeholder: "There are no resources.",
	})

	assert.Equal(t, "<h1>:books: NewStack Stack Resources</h1>\n<h2>Resource List</h2>\n<h3>There are no resources.</h3>\n", out)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, ":speech_balloon: Update", ChangeLabel(domain.ChangeUpdate))
	assert.Equal(t, ":hammer_and_wrench: Replace", ChangeLabel(domain.ChangeReplace))
	assert.Equal(t, ":wrench: May Replace", ChangeLabel(domain.ChangeMayReplace))
	assert.Equal(t, ":bomb: Destroy", ChangeLabel(domain.ChangeDestroy))
	assert.Equal(t, ":ghost: Orphan", ChangeLabel(domain.ChangeOrphan))
	assert.Empty(t, ChangeLabel(domain.ChangeNoChange))

	assert.Equal(t, ":bomb: DELETED", DriftLabel(domain.ResourceDeleted))
	assert.Equal(t, ":heavy_check_mark: IN_SYNC", DriftLabel(domain.ResourceInSync))
	assert.Equal(t, ":see_no_evil: NOT_CHECKED", DriftLabel(domain.ResourceNotChecked))
	assert.Equal(t, ":question: UNKNOWN", DriftLabel(domain.ResourceUnknown))
	assert.Empty(t, DriftLabel(domain.ResourceDriftStatus("SOMETHING")))
}

func TestCell_UnknownDriftOnlyRow(t *testing.T) {
	unknown := domain.ResourceUnknown
	row := domain.ReconciliationRow{
		Classification: domain.ChangeNoChange,
		DriftStatus:    &unknown,
		Type:           "AWS::SQS::Queue",
		LogicalID:      "Queue",
	}
	assert.Empty(t, Cell(row, domain.ColumnDiff))
	assert.Equal(t, ":question: UNKNOWN", Cell(row, domain.ColumnDrift))
}

func TestSink_AppendsReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	sink, err := NewSink(Config{Path: path}, log.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, SinkTypeMarkdown, sink.Type())

	report := driftReport()
	require.NoError(t, sink.Publish(context.Background(), report))
	require.NoError(t, sink.Publish(context.Background(), report))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Render(report)+Render(report), string(content))
}

func TestNewSink_FallsBackToStepSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step.md")
	t.Setenv(StepSummaryEnv, path)

	sink, err := NewSink(Config{}, log.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, path, sink.Path())
}

func TestNewSink_RequiresPath(t *testing.T) {
	t.Setenv(StepSummaryEnv, "")

	_, err := NewSink(Config{}, log.NewNopLogger())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeConfigValidation))
}
