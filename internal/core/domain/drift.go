package domain

// ResourceDriftStatus is the per-resource drift state reported by the cloud.
type ResourceDriftStatus string

const (
	ResourceInSync     ResourceDriftStatus = "IN_SYNC"
	ResourceModified   ResourceDriftStatus = "MODIFIED"
	ResourceDeleted    ResourceDriftStatus = "DELETED"
	ResourceNotChecked ResourceDriftStatus = "NOT_CHECKED"
	ResourceUnknown    ResourceDriftStatus = "UNKNOWN"
)

// IsDrift reports whether the status surfaces an out-of-band change.
func (s ResourceDriftStatus) IsDrift() bool {
	return s != ResourceInSync && s != ResourceNotChecked
}

// StackDriftStatus is the per-stack drift outcome. StackDriftUnknown is also
// the fallback when detection fails, times out or returns an unexpected value.
type StackDriftStatus string

const (
	StackDrifted      StackDriftStatus = "DRIFTED"
	StackInSync       StackDriftStatus = "IN_SYNC"
	StackNotChecked   StackDriftStatus = "NOT_CHECKED"
	StackDriftUnknown StackDriftStatus = "UNKNOWN"
)

// DetectionStatus is the state of an asynchronous drift detection.
type DetectionStatus string

const (
	DetectionComplete   DetectionStatus = "DETECTION_COMPLETE"
	DetectionFailed     DetectionStatus = "DETECTION_FAILED"
	DetectionInProgress DetectionStatus = "DETECTION_IN_PROGRESS"
)

// DriftDetectionTicket ties a started detection to its stack.
type DriftDetectionTicket struct {
	StackName   string
	DetectionID string
}

// DriftDetectionReport is one poll response, values passed through unmapped.
type DriftDetectionReport struct {
	Status           DetectionStatus
	StackDriftStatus StackDriftStatus
	Reason           string
}
