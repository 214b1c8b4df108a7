package ports

import (
	"context"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
)

// DocumentSink receives assembled reports. Implementations must tolerate
// receiving the same report twice.
type DocumentSink interface {
	Type() string
	Publish(ctx context.Context, report *domain.Report) error
}

// Notifier is told about a report once every sink accepted it. Failures are
// logged by the caller and never abort a run.
type Notifier interface {
	Type() string
	Notify(ctx context.Context, report *domain.Report) error
}

// Metrics records run outcomes.
type Metrics interface {
	ObserveDriftDetection(status domain.StackDriftStatus)
	ObserveDriftAttempts(attempts int)
	ObserveReport(report *domain.Report)
	ObservePublishFailure(sink string)
}
