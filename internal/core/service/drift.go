package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const defaultDriftConcurrency = 10

type pollKind int

const (
	pollRetry pollKind = iota
	pollDone
	pollAbort
)

// PollOutcome is the verdict of a single status poll.
type PollOutcome struct {
	kind   pollKind
	status domain.StackDriftStatus
	reason string
}

// Retry asks for another poll after the next backoff step.
func Retry() PollOutcome { return PollOutcome{kind: pollRetry} }

// Done settles the detection with status.
func Done(status domain.StackDriftStatus) PollOutcome { return PollOutcome{kind: pollDone, status: status} }

// Abort stops polling; the stack resolves to StackDriftUnknown.
func Abort(reason string) PollOutcome { return PollOutcome{kind: pollAbort, reason: reason} }

// DriftCoordinator starts drift detection for a batch of stacks and polls each
// detection until it settles. It never fails: anything that goes wrong for a
// stack collapses into StackDriftUnknown for that stack.
type DriftCoordinator struct {
	api         ports.DriftDetectionAPI
	logger      ports.Logger
	metrics     ports.Metrics
	policy      RetryPolicy
	concurrency int

	sleep   func(ctx context.Context, d time.Duration) error
	backoff func(p RetryPolicy) wait.Backoff
}

// DriftOption configures a DriftCoordinator.
type DriftOption func(*DriftCoordinator)

// WithDriftMetrics records attempts and outcomes of every detection.
func WithDriftMetrics(m ports.Metrics) DriftOption {
	return func(c *DriftCoordinator) { c.metrics = m }
}

// WithDriftConcurrency bounds how many detections are polled at once.
// Values below 1 keep the default.
func WithDriftConcurrency(n int) DriftOption {
	return func(c *DriftCoordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func NewDriftCoordinator(api ports.DriftDetectionAPI, logger ports.Logger, policy RetryPolicy, opts ...DriftOption) (*DriftCoordinator, error) {
	if api == nil {
		return nil, errors.New(errors.CodeConfigValidation, "drift detection api cannot be nil")
	}
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil")
	}
	c := &DriftCoordinator{
		api:         api,
		logger:      logger.WithFields(map[string]any{"component": "drift"}),
		policy:      policy.normalized(),
		concurrency: defaultDriftConcurrency,
		sleep:       sleepContext,
		backoff:     RetryPolicy.Backoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Detect returns the drift status of every stack whose detection could be
// started. Stacks that yielded no detection id are absent from the result.
func (c *DriftCoordinator) Detect(ctx context.Context, stackNames []string) map[string]domain.StackDriftStatus {
	tickets := c.initiate(ctx, stackNames)
	results := make(map[string]domain.StackDriftStatus, len(tickets))
	if len(tickets) == 0 {
		return results
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for _, ticket := range tickets {
		g.Go(func() error {
			status := c.poll(ctx, ticket)
			mu.Lock()
			results[ticket.StackName] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Infof(ctx, "Drift detection finished for %d of %d stacks", len(results), len(stackNames))
	return results
}

func (c *DriftCoordinator) initiate(ctx context.Context, stackNames []string) []domain.DriftDetectionTicket {
	seen := make(map[string]struct{}, len(stackNames))
	tickets := make([]domain.DriftDetectionTicket, 0, len(stackNames))
	for _, name := range stackNames {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		id, err := c.api.StartDriftDetection(ctx, name)
		if err != nil {
			c.logger.Warnf(ctx, "Could not start drift detection for stack %s, skipping: %v", name, err)
			continue
		}
		if id == "" {
			c.logger.Debugf(ctx, "No drift detection id returned for stack %s, skipping", name)
			continue
		}
		c.logger.Debugf(ctx, "Started drift detection %s for stack %s", id, name)
		tickets = append(tickets, domain.DriftDetectionTicket{StackName: name, DetectionID: id})
	}
	return tickets
}

// poll runs the bounded retry loop for one ticket. The timeout is private to
// the ticket so siblings keep their own budgets.
func (c *DriftCoordinator) poll(parent context.Context, ticket domain.DriftDetectionTicket) domain.StackDriftStatus {
	ctx, cancel := context.WithTimeout(parent, c.policy.Timeout)
	defer cancel()

	logger := c.logger.WithFields(map[string]any{"stack": ticket.StackName, "detection_id": ticket.DetectionID})
	attempt := 0
	delays := c.backoff(c.policy)
	status := func() domain.StackDriftStatus {
		for {
			if ctx.Err() != nil {
				logger.Warnf(ctx, "Drift detection timed out after %d attempts", attempt)
				return domain.StackDriftUnknown
			}
			attempt++
			outcome := c.pollOnce(ctx, ticket)
			switch outcome.kind {
			case pollDone:
				logger.Debugf(ctx, "Drift detection completed with %s after %d attempts", outcome.status, attempt)
				return outcome.status
			case pollAbort:
				logger.Warnf(ctx, "Drift detection aborted after %d attempts: %s", attempt, outcome.reason)
				return domain.StackDriftUnknown
			}

			if attempt >= c.policy.MaxAttempts {
				logger.Warnf(ctx, "Drift detection still in progress after %d attempts, giving up", attempt)
				return domain.StackDriftUnknown
			}
			if err := c.sleep(ctx, delays.Step()); err != nil {
				logger.Warnf(ctx, "Drift detection timed out after %d attempts", attempt)
				return domain.StackDriftUnknown
			}
		}
	}()

	if c.metrics != nil {
		c.metrics.ObserveDriftAttempts(attempt)
		c.metrics.ObserveDriftDetection(status)
	}
	return status
}

func (c *DriftCoordinator) pollOnce(ctx context.Context, ticket domain.DriftDetectionTicket) PollOutcome {
	report, err := c.api.DescribeDriftDetection(ctx, ticket.DetectionID)
	if err != nil {
		return Abort(err.Error())
	}
	return classifyDetection(report)
}

func classifyDetection(report domain.DriftDetectionReport) PollOutcome {
	switch report.Status {
	case domain.DetectionComplete:
		switch report.StackDriftStatus {
		case domain.StackDrifted, domain.StackInSync, domain.StackNotChecked:
			return Done(report.StackDriftStatus)
		default:
			return Done(domain.StackDriftUnknown)
		}
	case domain.DetectionFailed:
		return Done(domain.StackDriftUnknown)
	case domain.DetectionInProgress:
		return Retry()
	default:
		return Abort("unrecognized detection status " + string(report.Status))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
