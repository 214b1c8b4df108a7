package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
	"github.com/olusolaa/cfn-diff-reporter/mocks"
)

type EngineTestSuite struct {
	suite.Suite
	ctx       context.Context
	resolver  *mocks.MockTargetResolver
	parser    *mocks.MockTemplateParser
	stacks    *mocks.MockStackReader
	differ    *mocks.MockDiffEngine
	formatter *mocks.MockDiffFormatter
	sink      *mocks.MockDocumentSink
	registry  *ComponentRegistry
	published []*domain.Report

	current *domain.Template
	target  *domain.Template
	diff    mocks.StaticDiff
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.resolver = new(mocks.MockTargetResolver)
	s.parser = new(mocks.MockTemplateParser)
	s.stacks = new(mocks.MockStackReader)
	s.differ = new(mocks.MockDiffEngine)
	s.formatter = new(mocks.MockDiffFormatter)
	s.sink = &mocks.MockDocumentSink{SinkType: "capture"}
	s.published = nil

	s.registry = NewComponentRegistry()
	s.Require().NoError(s.registry.RegisterDocumentSink(s.sink))

	s.current = &domain.Template{Resources: map[string]domain.TemplateResource{
		"WebBucket": {Type: "AWS::S3::Bucket", Properties: map[string]any{"BucketName": "web"}},
		"OldQueue":  {Type: "AWS::SQS::Queue"},
	}}
	s.target = &domain.Template{Resources: map[string]domain.TemplateResource{
		"WebBucket": {Type: "AWS::S3::Bucket", Properties: map[string]any{"BucketName": "web"}},
	}}
	s.diff = mocks.StaticDiff{
		"WebBucket": {Classification: domain.ChangeNoChange},
		"OldQueue":  {Classification: domain.ChangeDestroy, Old: &domain.TemplateResource{Type: "AWS::SQS::Queue"}},
	}

	s.formatter.On("FormatDifferences", mock.Anything).Return("[-] AWS::SQS::Queue OldQueue destroy").Maybe()
	s.formatter.On("FormatSecurityChanges", mock.Anything).Return("").Maybe()
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) newEngine(drift *DriftCoordinator) *ReconciliationEngine {
	assembler, err := NewAssembler("us-east-1", s.registry, log.NewNopLogger(), nil)
	s.Require().NoError(err)
	engine, err := NewReconciliationEngine(s.resolver, s.parser, s.stacks, drift, s.differ, s.formatter, assembler, nil, log.NewNopLogger())
	s.Require().NoError(err)
	return engine
}

func (s *EngineTestSuite) capturePublish() {
	s.sink.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		s.published = append(s.published, args.Get(1).(*domain.Report))
	}).Return(nil)
}

func (s *EngineTestSuite) expectDeployedApp() {
	s.resolver.On("ResolveTargets", mock.Anything).Return(map[string]string{"app": "app.template.json"}, nil)
	s.stacks.On("ListStacks", mock.Anything).Return([]domain.StackIdentity{
		{Name: "unrelated", ID: "arn:unrelated", Status: "CREATE_COMPLETE"},
		{Name: "app", ID: "arn:app", Status: "UPDATE_COMPLETE"},
	}, nil)
	s.parser.On("ParseFile", mock.Anything, "app.template.json").Return(s.target, nil)
	s.stacks.On("GetTemplate", mock.Anything, "app").Return(s.current, nil)
	s.differ.On("ComputeDiff", s.current, s.target).Return(s.diff, nil)
}

func (s *EngineTestSuite) TestRun_DestroyedResourceScenario() {
	s.expectDeployedApp()
	s.stacks.On("ListStackResources", mock.Anything, "app").Return([]domain.ResourceRecord{
		{LogicalID: "WebBucket", Type: "AWS::S3::Bucket", PhysicalID: mocks.Ptr("web")},
		{LogicalID: "OldQueue", Type: "AWS::SQS::Queue", PhysicalID: mocks.Ptr("https://sqs/old")},
		{LogicalID: "CDKMetadata", Type: domain.MetadataResourceType, PhysicalID: mocks.Ptr("meta")},
	}, nil)
	s.capturePublish()

	s.Require().NoError(s.newEngine(nil).Run(s.ctx))

	s.Require().Len(s.published, 1)
	r := s.published[0]
	s.Equal("app", r.StackName)
	s.Equal(domain.ReportDifference, r.Kind)
	s.Require().Len(r.Rows, 1)
	s.Equal(domain.ReconciliationRow{
		Classification: domain.ChangeDestroy,
		Type:           "AWS::SQS::Queue",
		LogicalID:      "OldQueue",
		DisplayName:    "https://sqs/old",
	}, r.Rows[0])
	s.Require().Len(r.Details, 1)
	s.Equal(DetailResourceDifference, r.Details[0].Title)
	s.stacks.AssertNotCalled(s.T(), "GetTemplate", mock.Anything, "unrelated")
}

func (s *EngineTestSuite) TestRun_NewStackGetsResourceList() {
	s.resolver.On("ResolveTargets", mock.Anything).Return(map[string]string{"fresh": "fresh.yaml"}, nil)
	s.stacks.On("ListStacks", mock.Anything).Return([]domain.StackIdentity{}, nil)
	s.parser.On("ParseFile", mock.Anything, "fresh.yaml").Return(s.target, nil)
	s.capturePublish()

	s.Require().NoError(s.newEngine(nil).Run(s.ctx))

	s.Require().Len(s.published, 1)
	s.Equal(domain.ReportResourceList, s.published[0].Kind)
	s.Require().Len(s.published[0].Rows, 1)
	s.Equal("web", s.published[0].Rows[0].DisplayName)
	s.stacks.AssertNotCalled(s.T(), "GetTemplate", mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestRun_DriftMode() {
	s.expectDeployedApp()
	s.stacks.On("ListStackResources", mock.Anything, "app").Return([]domain.ResourceRecord{
		{LogicalID: "WebBucket", Type: "AWS::S3::Bucket", PhysicalID: mocks.Ptr("web"), DriftStatus: drift(domain.ResourceModified)},
		{LogicalID: "OldQueue", Type: "AWS::SQS::Queue", PhysicalID: mocks.Ptr("https://sqs/old"), DriftStatus: drift(domain.ResourceInSync)},
	}, nil)
	s.capturePublish()

	api := new(mocks.MockDriftDetectionAPI)
	api.On("StartDriftDetection", mock.Anything, "app").Return("d-1", nil).Once()
	api.On("DescribeDriftDetection", mock.Anything, "d-1").
		Return(domain.DriftDetectionReport{Status: domain.DetectionComplete, StackDriftStatus: domain.StackDrifted}, nil).Once()
	coordinator, err := NewDriftCoordinator(api, log.NewNopLogger(), RetryPolicy{BaseDelay: time.Millisecond, MaxAttempts: 2, Timeout: time.Second})
	s.Require().NoError(err)

	s.Require().NoError(s.newEngine(coordinator).Run(s.ctx))

	s.Require().Len(s.published, 1)
	r := s.published[0]
	s.True(r.DriftMode)
	s.NotNil(r.Banner)
	s.Equal(domain.StackDrifted, r.StackDrift)
	s.Require().Len(r.Rows, 2)
	s.Equal("AWS::S3::Bucket", r.Rows[0].Type)
	s.Equal("web", r.Rows[0].DisplayName)
	s.Equal(domain.ResourceModified, *r.Rows[0].DriftStatus)
	api.AssertExpectations(s.T())
}

func (s *EngineTestSuite) TestRun_NoTargets() {
	s.resolver.On("ResolveTargets", mock.Anything).Return(map[string]string{}, nil)

	err := s.newEngine(nil).Run(s.ctx)

	s.True(errors.Is(err, errors.CodeTargetResolution))
	_, _, userFacing := errors.GetUserFacingMessage(err)
	s.True(userFacing)
}

func (s *EngineTestSuite) TestRun_ListStacksErrorAborts() {
	s.resolver.On("ResolveTargets", mock.Anything).Return(map[string]string{"app": "app.json"}, nil)
	s.stacks.On("ListStacks", mock.Anything).
		Return(nil, errors.New(errors.CodePlatformAuthError, "expired token"))

	err := s.newEngine(nil).Run(s.ctx)

	s.True(errors.Is(err, errors.CodePlatformAuthError))
	s.sink.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestRun_TemplateErrorAborts() {
	s.resolver.On("ResolveTargets", mock.Anything).Return(map[string]string{"app": "app.txt"}, nil)
	s.stacks.On("ListStacks", mock.Anything).Return([]domain.StackIdentity{}, nil)
	s.parser.On("ParseFile", mock.Anything, "app.txt").
		Return(nil, errors.New(errors.CodeTemplateParseError, "unsupported template extension"))

	err := s.newEngine(nil).Run(s.ctx)

	s.True(errors.Is(err, errors.CodeTemplateParseError))
}

func (s *EngineTestSuite) TestRun_PublishFailureContinuesAndReports() {
	s.resolver.On("ResolveTargets", mock.Anything).Return(map[string]string{"a": "a.json", "b": "b.json"}, nil)
	s.stacks.On("ListStacks", mock.Anything).Return([]domain.StackIdentity{}, nil)
	s.parser.On("ParseFile", mock.Anything, mock.Anything).Return(s.target, nil)
	s.sink.On("Publish", mock.Anything, mock.MatchedBy(func(r *domain.Report) bool { return r.StackName == "a" })).
		Return(stderrors.New("boom")).Once()
	s.sink.On("Publish", mock.Anything, mock.MatchedBy(func(r *domain.Report) bool { return r.StackName == "b" })).
		Return(nil).Once()

	err := s.newEngine(nil).Run(s.ctx)

	s.True(errors.Is(err, errors.CodePublishError))
	s.sink.AssertExpectations(s.T())
}
