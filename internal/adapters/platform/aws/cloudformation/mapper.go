package cloudformation

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
)

func toStackIdentity(s cfntypes.StackSummary) domain.StackIdentity {
	return domain.StackIdentity{
		Name:   aws.ToString(s.StackName),
		ID:     aws.ToString(s.StackId),
		Status: string(s.StackStatus),
	}
}

func toResourceRecord(s cfntypes.StackResourceSummary) domain.ResourceRecord {
	record := domain.ResourceRecord{
		LogicalID:  aws.ToString(s.LogicalResourceId),
		Type:       aws.ToString(s.ResourceType),
		PhysicalID: s.PhysicalResourceId,
	}
	if s.DriftInformation != nil {
		record.DriftStatus = toResourceDriftStatus(s.DriftInformation.StackResourceDriftStatus)
	}
	return record
}

// toResourceDriftStatus returns nil for an empty status. Values this build does
// not know become UNKNOWN.
func toResourceDriftStatus(s cfntypes.StackResourceDriftStatus) *domain.ResourceDriftStatus {
	var status domain.ResourceDriftStatus
	switch s {
	case "":
		return nil
	case cfntypes.StackResourceDriftStatusInSync:
		status = domain.ResourceInSync
	case cfntypes.StackResourceDriftStatusModified:
		status = domain.ResourceModified
	case cfntypes.StackResourceDriftStatusDeleted:
		status = domain.ResourceDeleted
	case cfntypes.StackResourceDriftStatusNotChecked:
		status = domain.ResourceNotChecked
	default:
		status = domain.ResourceUnknown
	}
	return &status
}

// toDriftDetectionReport passes values through; the coordinator decides what
// they mean.
func toDriftDetectionReport(out *cloudformation.DescribeStackDriftDetectionStatusOutput) domain.DriftDetectionReport {
	return domain.DriftDetectionReport{
		Status:           domain.DetectionStatus(out.DetectionStatus),
		StackDriftStatus: domain.StackDriftStatus(out.StackDriftStatus),
		Reason:           aws.ToString(out.DetectionStatusReason),
	}
}
