package ports

import (
	"context"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
)

// StackPredicate selects stacks during enumeration.
type StackPredicate func(domain.StackIdentity) bool

// StackReader is the read side of the CloudFormation API.
type StackReader interface {
	ListStacks(ctx context.Context, predicate StackPredicate) ([]domain.StackIdentity, error)
	GetTemplate(ctx context.Context, stackName string) (*domain.Template, error)
	ListStackResources(ctx context.Context, stackName string) ([]domain.ResourceRecord, error)
}

// DriftDetectionAPI starts and polls stack drift detection. StartDriftDetection
// returns an empty id when the platform did not hand out a ticket.
type DriftDetectionAPI interface {
	StartDriftDetection(ctx context.Context, stackName string) (string, error)
	DescribeDriftDetection(ctx context.Context, detectionID string) (domain.DriftDetectionReport, error)
}
