package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const (
	PlaceholderNoChanges   = "There are no changes."
	PlaceholderNoResources = "There are no resources."
	SubheadingResourceList = "Resource List"
	BannerDriftDetected    = "Drift Detected"
)

var (
	differenceColumns      = []domain.Column{domain.ColumnDiff, domain.ColumnType, domain.ColumnLogicalID, domain.ColumnPhysicalID}
	driftDifferenceColumns = []domain.Column{domain.ColumnDiff, domain.ColumnDrift, domain.ColumnType, domain.ColumnLogicalID, domain.ColumnPhysicalID}
	resourceListColumns    = []domain.Column{domain.ColumnType, domain.ColumnLogicalID, domain.ColumnPhysicalID}
)

// DifferenceInput carries everything computed for a deployed stack.
type DifferenceInput struct {
	Stack     domain.StackIdentity
	Merge     MergeResult
	Details   []domain.DetailBlock
	DriftMode bool
	// StackDrift is the coordinator verdict, StackDriftUnknown when absent.
	StackDrift domain.StackDriftStatus
}

// Assembler composes reports and hands them to the registered sinks and
// notifiers. Composition makes no remote calls.
type Assembler struct {
	region   string
	registry *ComponentRegistry
	logger   ports.Logger
	metrics  ports.Metrics
}

func NewAssembler(region string, registry *ComponentRegistry, logger ports.Logger, metrics ports.Metrics) (*Assembler, error) {
	if registry == nil {
		return nil, errors.New(errors.CodeConfigValidation, "component registry cannot be nil")
	}
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil")
	}
	return &Assembler{
		region:   region,
		registry: registry,
		logger:   logger.WithFields(map[string]any{"component": "assembler"}),
		metrics:  metrics,
	}, nil
}

func (a *Assembler) consolePrefix() string {
	return fmt.Sprintf("https://%s.console.aws.amazon.com/cloudformation/home?region=%s#/stacks", a.region, a.region)
}

func (a *Assembler) StackURL(stackID string) string {
	return a.consolePrefix() + "/stackinfo?stackId=" + url.QueryEscape(stackID)
}

func (a *Assembler) DriftURL(stackID string) string {
	return a.consolePrefix() + "/drifts?stackId=" + url.QueryEscape(stackID)
}

func (a *Assembler) DifferenceReport(in DifferenceInput) *domain.Report {
	report := &domain.Report{
		Kind:      domain.ReportDifference,
		StackName: in.Stack.Name,
		StackID:   in.Stack.ID,
		StackURL:  a.StackURL(in.Stack.ID),
		Heading:   in.Stack.Name + " Stack Resources",
		Rows:      in.Merge.Rows,
		Details:   in.Details,
		DriftMode: in.DriftMode,
		AnyDrift:  in.Merge.AnyDrift,
		Columns:   differenceColumns,
	}
	if len(report.Rows) == 0 {
		report.Placeholder = PlaceholderNoChanges
	}
	if in.DriftMode {
		report.Columns = driftDifferenceColumns
		stackDrift := EffectiveStackDrift(in.StackDrift, in.Merge.AnyDrift)
		if stackDrift == domain.StackDrifted {
			report.Banner = &domain.Banner{Text: BannerDriftDetected, URL: a.DriftURL(in.Stack.ID)}
		}
		report.StackDrift = stackDrift
	}
	return report
}

func (a *Assembler) ResourceListReport(stackName string, rows []domain.ReconciliationRow) *domain.Report {
	report := &domain.Report{
		Kind:       domain.ReportResourceList,
		StackName:  stackName,
		Heading:    stackName + " Stack Resources",
		Subheading: SubheadingResourceList,
		Columns:    resourceListColumns,
		Rows:       rows,
	}
	if len(rows) == 0 {
		report.Placeholder = PlaceholderNoResources
	}
	return report
}

// Publish hands the report to every sink. Notifiers run only when all sinks
// accepted the report, and their failures are logged, not returned.
func (a *Assembler) Publish(ctx context.Context, report *domain.Report) error {
	logger := a.logger.WithFields(map[string]any{"stack": report.StackName})

	sinks := a.registry.DocumentSinks()
	if len(sinks) == 0 {
		logger.Warnf(ctx, "No document sinks configured, report for %s dropped", report.StackName)
		return nil
	}

	var errs []error
	for _, sink := range sinks {
		if err := sink.Publish(ctx, report); err != nil {
			logger.Errorf(ctx, err, "document sink %s failed", sink.Type())
			if a.metrics != nil {
				a.metrics.ObservePublishFailure(sink.Type())
			}
			errs = append(errs, fmt.Errorf("%s: %w", sink.Type(), err))
		}
	}
	if len(errs) > 0 {
		appErr := errors.New(errors.CodePublishError, fmt.Sprintf("failed to publish report for stack %s", report.StackName))
		appErr.WrappedError = stderrors.Join(errs...)
		return appErr
	}
	logger.Debugf(ctx, "Report published to %d sinks", len(sinks))

	for _, notifier := range a.registry.Notifiers() {
		if err := notifier.Notify(ctx, report); err != nil {
			logger.Warnf(ctx, "Notifier %s failed: %v", notifier.Type(), err)
		}
	}
	return nil
}
