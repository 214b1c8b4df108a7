package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

// ReconciliationEngine reports every resolved target once per run. It keeps no
// state between runs.
type ReconciliationEngine struct {
	resolver  ports.TargetResolver
	parser    ports.TemplateParser
	stacks    ports.StackReader
	drift     *DriftCoordinator
	differ    ports.DiffEngine
	formatter ports.DiffFormatter
	assembler *Assembler
	metrics   ports.Metrics
	logger    ports.Logger
}

// NewReconciliationEngine wires the engine. drift may be nil, which disables
// drift-aware reports.
func NewReconciliationEngine(
	resolver ports.TargetResolver,
	parser ports.TemplateParser,
	stacks ports.StackReader,
	drift *DriftCoordinator,
	differ ports.DiffEngine,
	formatter ports.DiffFormatter,
	assembler *Assembler,
	metrics ports.Metrics,
	logger ports.Logger,
) (*ReconciliationEngine, error) {
	if resolver == nil {
		return nil, errors.New(errors.CodeConfigValidation, "target resolver cannot be nil")
	}
	if parser == nil {
		return nil, errors.New(errors.CodeConfigValidation, "template parser cannot be nil")
	}
	if stacks == nil {
		return nil, errors.New(errors.CodeConfigValidation, "stack reader cannot be nil")
	}
	if differ == nil || formatter == nil {
		return nil, errors.New(errors.CodeConfigValidation, "diff engine and formatter cannot be nil")
	}
	if assembler == nil {
		return nil, errors.New(errors.CodeConfigValidation, "report assembler cannot be nil")
	}
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil")
	}

	return &ReconciliationEngine{
		resolver:  resolver,
		parser:    parser,
		stacks:    stacks,
		drift:     drift,
		differ:    differ,
		formatter: formatter,
		assembler: assembler,
		metrics:   metrics,
		logger:    logger.WithFields(map[string]any{"component": "engine"}),
	}, nil
}

func (e *ReconciliationEngine) Run(ctx context.Context) error {
	targets, err := e.resolver.ResolveTargets(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeTargetResolution, "failed to resolve target stacks")
	}
	if len(targets) == 0 {
		return errors.NewUserFacing(errors.CodeTargetResolution, "no target stacks found",
			"Configure targets.stacks, pass --stacks, or point --cdk-out at a synthesized cloud assembly.")
	}

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	e.logger.Infof(ctx, "Reconciling %d target stacks", len(names))

	live, err := e.stacks.ListStacks(ctx, func(s domain.StackIdentity) bool {
		_, ok := targets[s.Name]
		return ok
	})
	if err != nil {
		return errors.Wrap(err, errors.CodePlatformAPIError, "failed to list stacks")
	}
	deployed := make(map[string]domain.StackIdentity, len(live))
	for _, s := range live {
		deployed[s.Name] = s
	}
	e.logger.Debugf(ctx, "%d of %d target stacks are deployed", len(deployed), len(names))

	var driftStatuses map[string]domain.StackDriftStatus
	if e.drift != nil && len(deployed) > 0 {
		deployedNames := make([]string, 0, len(deployed))
		for _, name := range names {
			if _, ok := deployed[name]; ok {
				deployedNames = append(deployedNames, name)
			}
		}
		driftStatuses = e.drift.Detect(ctx, deployedNames)
	}

	var publishErrs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeTimeout, "reconciliation cancelled")
		}

		report, err := e.buildReport(ctx, name, targets[name], deployed, driftStatuses)
		if err != nil {
			return err
		}
		if e.metrics != nil {
			e.metrics.ObserveReport(report)
		}
		if err := e.assembler.Publish(ctx, report); err != nil {
			publishErrs = append(publishErrs, err)
		}
	}

	if len(publishErrs) > 0 {
		appErr := errors.NewUserFacing(errors.CodePublishError,
			fmt.Sprintf("failed to publish %d of %d reports", len(publishErrs), len(names)),
			"Check the configured report sinks and their credentials.")
		appErr.WrappedError = stderrors.Join(publishErrs...)
		return appErr
	}
	e.logger.Infof(ctx, "Reconciliation finished for %d stacks", len(names))
	return nil
}

func (e *ReconciliationEngine) buildReport(
	ctx context.Context,
	name, templatePath string,
	deployed map[string]domain.StackIdentity,
	driftStatuses map[string]domain.StackDriftStatus,
) (*domain.Report, error) {
	logger := e.logger.WithFields(map[string]any{"stack": name})

	target, err := e.parser.ParseFile(ctx, templatePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplateReadError, fmt.Sprintf("failed to read target template for stack %s", name))
	}

	stack, ok := deployed[name]
	if !ok {
		logger.Infof(ctx, "Stack %s is not deployed yet, listing target resources", name)
		return e.assembler.ResourceListReport(name, ResourceList(target)), nil
	}

	current, err := e.stacks.GetTemplate(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePlatformAPIError, fmt.Sprintf("failed to get template of stack %s", name))
	}
	resources, err := e.stacks.ListStackResources(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePlatformAPIError, fmt.Sprintf("failed to list resources of stack %s", name))
	}
	// Name hints come from the target declaration; resources about to be
	// destroyed fall back to their physical id.
	for i := range resources {
		if declared, ok := target.Resource(resources[i].LogicalID); ok {
			resources[i].Properties = declared.Properties
		}
	}

	diff, err := e.differ.ComputeDiff(current, target)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDiffError, fmt.Sprintf("failed to diff stack %s", name))
	}

	driftMode := e.drift != nil
	merged := Merge(diff, resources, driftMode)
	logger.Debugf(ctx, "Merged %d live resources into %d rows", len(resources), len(merged.Rows))

	stackDrift := domain.StackDriftUnknown
	if status, ok := driftStatuses[name]; ok {
		stackDrift = status
	}
	return e.assembler.DifferenceReport(DifferenceInput{
		Stack:      stack,
		Merge:      merged,
		Details:    RenderDetails(diff, e.formatter),
		DriftMode:  driftMode,
		StackDrift: stackDrift,
	}), nil
}
