package ports

import "context"

// ReconciliationEngine runs one full reconciliation of all resolved targets.
type ReconciliationEngine interface {
	Run(ctx context.Context) error
}
