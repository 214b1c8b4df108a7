package domain

// StackIdentity identifies one live stack. Name correlates with declared
// targets, ID is the immutable stack ARN used for console links.
type StackIdentity struct {
	Name   string
	ID     string
	Status string
}

// StableStackStatuses are the terminal, non-failed statuses a stack must be in
// to be reconciled.
var StableStackStatuses = []string{
	"CREATE_COMPLETE",
	"ROLLBACK_COMPLETE",
	"IMPORT_COMPLETE",
	"IMPORT_ROLLBACK_COMPLETE",
	"UPDATE_COMPLETE",
	"UPDATE_ROLLBACK_COMPLETE",
}

func IsStableStackStatus(status string) bool {
	for _, s := range StableStackStatuses {
		if s == status {
			return true
		}
	}
	return false
}
