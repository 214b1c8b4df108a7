package cloudformation

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
)

// StartDriftDetection returns "" when the API accepted the call without a
// detection id.
func (h *Handler) StartDriftDetection(ctx context.Context, stackName string) (string, error) {
	if err := h.limiter.Wait(ctx, h.logger); err != nil {
		return "", h.errorHandler.Handle(serviceName, "DetectStackDrift", err, ctx)
	}
	out, err := h.client.DetectStackDrift(ctx, &cloudformation.DetectStackDriftInput{StackName: aws.String(stackName)})
	if err != nil {
		return "", h.errorHandler.Handle(serviceName, "DetectStackDrift "+stackName, err, ctx)
	}
	return aws.ToString(out.StackDriftDetectionId), nil
}

func (h *Handler) DescribeDriftDetection(ctx context.Context, detectionID string) (domain.DriftDetectionReport, error) {
	if err := h.limiter.Wait(ctx, h.logger); err != nil {
		return domain.DriftDetectionReport{}, h.errorHandler.Handle(serviceName, "DescribeStackDriftDetectionStatus", err, ctx)
	}
	out, err := h.client.DescribeStackDriftDetectionStatus(ctx, &cloudformation.DescribeStackDriftDetectionStatusInput{
		StackDriftDetectionId: aws.String(detectionID),
	})
	if err != nil {
		return domain.DriftDetectionReport{}, h.errorHandler.Handle(serviceName, "DescribeStackDriftDetectionStatus "+detectionID, err, ctx)
	}
	return toDriftDetectionReport(out), nil
}
