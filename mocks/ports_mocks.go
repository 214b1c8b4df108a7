package mocks

import (
	"context"
	"sort"

	"github.com/stretchr/testify/mock"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
)

// MockLogger records calls. Tests that only need a silent logger should use
// log.NewNopLogger instead.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debugf(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *MockLogger) Infof(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *MockLogger) Warnf(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *MockLogger) Errorf(ctx context.Context, err error, format string, args ...any) {
	m.Called(ctx, err, format, args)
}

func (m *MockLogger) WithFields(fields map[string]any) ports.Logger {
	args := m.Called(fields)
	if l, ok := args.Get(0).(ports.Logger); ok {
		return l
	}
	return m
}

type MockDriftDetectionAPI struct {
	mock.Mock
}

func (m *MockDriftDetectionAPI) StartDriftDetection(ctx context.Context, stackName string) (string, error) {
	args := m.Called(ctx, stackName)
	return args.String(0), args.Error(1)
}

func (m *MockDriftDetectionAPI) DescribeDriftDetection(ctx context.Context, detectionID string) (domain.DriftDetectionReport, error) {
	args := m.Called(ctx, detectionID)
	return args.Get(0).(domain.DriftDetectionReport), args.Error(1)
}

type MockStackReader struct {
	mock.Mock
}

// ListStacks applies predicate to the stacks the expectation returns.
func (m *MockStackReader) ListStacks(ctx context.Context, predicate ports.StackPredicate) ([]domain.StackIdentity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	var out []domain.StackIdentity
	for _, s := range args.Get(0).([]domain.StackIdentity) {
		if predicate == nil || predicate(s) {
			out = append(out, s)
		}
	}
	return out, args.Error(1)
}

func (m *MockStackReader) GetTemplate(ctx context.Context, stackName string) (*domain.Template, error) {
	args := m.Called(ctx, stackName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockStackReader) ListStackResources(ctx context.Context, stackName string) ([]domain.ResourceRecord, error) {
	args := m.Called(ctx, stackName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResourceRecord), args.Error(1)
}

type MockTargetResolver struct {
	mock.Mock
}

func (m *MockTargetResolver) ResolveTargets(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

type MockTemplateParser struct {
	mock.Mock
}

func (m *MockTemplateParser) ParseFile(ctx context.Context, path string) (*domain.Template, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockTemplateParser) ParseBody(body []byte) (*domain.Template, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

type MockDiffEngine struct {
	mock.Mock
}

func (m *MockDiffEngine) ComputeDiff(current, target *domain.Template) (ports.Diff, error) {
	args := m.Called(current, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Diff), args.Error(1)
}

type MockDiffFormatter struct {
	mock.Mock
}

func (m *MockDiffFormatter) FormatDifferences(diff ports.Diff) string {
	return m.Called(diff).String(0)
}

func (m *MockDiffFormatter) FormatSecurityChanges(diff ports.Diff) string {
	return m.Called(diff).String(0)
}

type MockDocumentSink struct {
	mock.Mock
	SinkType string
}

func (m *MockDocumentSink) Type() string { return m.SinkType }

func (m *MockDocumentSink) Publish(ctx context.Context, report *domain.Report) error {
	return m.Called(ctx, report).Error(0)
}

type MockNotifier struct {
	mock.Mock
	NotifierType string
}

func (m *MockNotifier) Type() string { return m.NotifierType }

func (m *MockNotifier) Notify(ctx context.Context, report *domain.Report) error {
	return m.Called(ctx, report).Error(0)
}

// StaticDiff is a fixed ports.Diff keyed by logical id.
type StaticDiff map[domain.ResourceKey]domain.ResourceChange

func (d StaticDiff) ClassificationOf(id domain.ResourceKey) domain.ChangeClassification {
	if c, ok := d[id]; ok {
		return c.Classification
	}
	return domain.ChangeNoChange
}

func (d StaticDiff) ForEachChange(fn func(domain.ResourceChange)) {
	ids := make([]string, 0, len(d))
	for id, c := range d {
		if c.Classification != domain.ChangeNoChange {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := d[id]
		c.LogicalID = id
		fn(c)
	}
}
