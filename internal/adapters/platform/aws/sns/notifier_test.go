package sns

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	idderrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
	"github.com/olusolaa/cfn-diff-reporter/mocks"
)

const topic = "arn:aws:sns:us-east-1:123456789012:deploys"

func changedReport() *domain.Report {
	return &domain.Report{
		Kind:      domain.ReportDifference,
		StackName: "AppStack",
		Heading:   "AppStack Stack Resources",
		StackURL:  "https://console/stack",
		Columns:   []domain.Column{domain.ColumnDiff, domain.ColumnType, domain.ColumnLogicalID, domain.ColumnPhysicalID},
		Rows: []domain.ReconciliationRow{
			{Classification: domain.ChangeCreate, Type: "AWS::S3::Bucket", LogicalID: "WebBucket", DisplayName: "web"},
		},
	}
}

func newTestNotifier(t *testing.T, cfg Config, client *mocks.MockSNSClient) *Notifier {
	t.Helper()
	limiter := new(mocks.MockRateLimiter)
	limiter.On("Wait", mock.Anything).Return(nil).Maybe()
	n, err := NewNotifier(aws.Config{}, cfg, log.NewNopLogger(), WithSNSClient(client), WithRateLimiter(limiter))
	require.NoError(t, err)
	return n
}

func TestNotify_Publishes(t *testing.T) {
	client := new(mocks.MockSNSClient)
	client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.TopicArn) == topic &&
			aws.ToString(in.Subject) == "AppStack: 1 changes" &&
			strings.Contains(aws.ToString(in.Message), "- Create | AWS::S3::Bucket | WebBucket | web")
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil).Once()

	n := newTestNotifier(t, Config{TopicARN: topic}, client)
	require.NoError(t, n.Notify(context.Background(), changedReport()))
	assert.Equal(t, NotifierTypeSNS, n.Type())
	client.AssertExpectations(t)
}

func TestNotify_OnlyChangesSkipsEmptyReport(t *testing.T) {
	client := new(mocks.MockSNSClient)
	n := newTestNotifier(t, Config{TopicARN: topic, OnlyChanges: true}, client)

	require.NoError(t, n.Notify(context.Background(), &domain.Report{StackName: "Quiet", Placeholder: "There are no changes."}))
	client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestNotify_WrapsPublishError(t *testing.T) {
	client := new(mocks.MockSNSClient)
	client.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
	n := newTestNotifier(t, Config{TopicARN: topic}, client)

	err := n.Notify(context.Background(), changedReport())
	require.Error(t, err)
	assert.Equal(t, idderrors.CodePlatformAPIError, idderrors.GetCode(err))
}

func TestSubject_Truncates(t *testing.T) {
	report := changedReport()
	report.StackName = strings.Repeat("VeryLongStackName", 10)

	subject := Subject(report)
	assert.Len(t, subject, maxSubjectLength)
	assert.True(t, strings.HasSuffix(subject, "..."))
}

func TestSubject_Drift(t *testing.T) {
	report := changedReport()
	report.Banner = &domain.Banner{Text: "Drift Detected", URL: "https://console/drifts"}
	assert.Equal(t, "AppStack: 1 changes, drift detected", Subject(report))
	assert.Contains(t, Message(report), "Drift Detected: https://console/drifts\n")
}

func TestNewNotifier_RequiresTopic(t *testing.T) {
	_, err := NewNotifier(aws.Config{}, Config{}, log.NewNopLogger())
	require.Error(t, err)
	assert.True(t, idderrors.Is(err, idderrors.CodeConfigValidation))
}
