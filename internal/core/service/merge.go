package service

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
)

const (
	DetailResourceDifference = "Resource Difference"
	DetailSecurityChanges    = "Security Changes"
)

// MergeResult is the ordered row set of one stack plus the report-level drift
// signal.
type MergeResult struct {
	Rows []domain.ReconciliationRow
	// AnyDrift is set when any evaluated live resource reports a drift status
	// other than IN_SYNC or NOT_CHECKED, whether or not it produced a row.
	AnyDrift bool
}

// Merge joins the diff verdicts with the live inventory of a stack. Without
// drift mode only changed resources produce rows; with drift mode a drifted
// resource produces a row even when the diff sees no change. Resources the
// diff is about to create have no live record yet and are added from the
// diff itself.
func Merge(diff ports.Diff, live []domain.ResourceRecord, driftMode bool) MergeResult {
	resources := make([]domain.ResourceRecord, 0, len(live))
	for _, r := range live {
		if !r.IsMetadata() {
			resources = append(resources, r)
		}
	}
	slices.SortStableFunc(resources, func(a, b domain.ResourceRecord) int {
		return cmp.Or(
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.PhysicalIDOrEmpty(), b.PhysicalIDOrEmpty()),
			cmp.Compare(a.LogicalID, b.LogicalID),
		)
	})

	var result MergeResult
	seen := make(map[domain.ResourceKey]struct{}, len(resources))
	for _, r := range resources {
		seen[r.LogicalID] = struct{}{}

		classification := classificationOf(diff, r.LogicalID)
		drifted := r.DriftStatus != nil && r.DriftStatus.IsDrift()
		if drifted {
			result.AnyDrift = true
		}
		if classification == domain.ChangeNoChange && !(driftMode && drifted) {
			continue
		}

		row := domain.ReconciliationRow{
			Classification: classification,
			Type:           r.Type,
			LogicalID:      r.LogicalID,
			DisplayName:    domain.DisplayName(r.Properties, r.PhysicalID),
		}
		if driftMode && r.DriftStatus != nil {
			status := *r.DriftStatus
			row.DriftStatus = &status
		}
		result.Rows = append(result.Rows, row)
	}

	if diff != nil {
		diff.ForEachChange(func(change domain.ResourceChange) {
			if change.Classification != domain.ChangeCreate || change.ResourceType() == domain.MetadataResourceType {
				return
			}
			if _, ok := seen[change.LogicalID]; ok {
				return
			}
			var props map[string]any
			if change.New != nil {
				props = change.New.Properties
			}
			result.Rows = append(result.Rows, domain.ReconciliationRow{
				Classification: change.Classification,
				Type:           change.ResourceType(),
				LogicalID:      change.LogicalID,
				DisplayName:    domain.NameHint(props),
			})
		})
	}

	sortRows(result.Rows)
	return result
}

// ResourceList lists the resources of a template that has never been
// deployed.
func ResourceList(target *domain.Template) []domain.ReconciliationRow {
	if target == nil {
		return nil
	}
	rows := make([]domain.ReconciliationRow, 0, len(target.Resources))
	for id, res := range target.Resources {
		if res.Type == domain.MetadataResourceType {
			continue
		}
		rows = append(rows, domain.ReconciliationRow{
			Classification: domain.ChangeCreate,
			Type:           res.Type,
			LogicalID:      id,
			DisplayName:    domain.NameHint(res.Properties),
		})
	}
	sortRows(rows)
	return rows
}

// RenderDetails renders the detail blocks of a difference report with all
// terminal styling removed. An empty security block is dropped.
func RenderDetails(diff ports.Diff, formatter ports.DiffFormatter) []domain.DetailBlock {
	if diff == nil || formatter == nil {
		return nil
	}
	blocks := []domain.DetailBlock{{
		Title: DetailResourceDifference,
		Body:  ansi.Strip(formatter.FormatDifferences(diff)),
	}}
	security := ansi.Strip(formatter.FormatSecurityChanges(diff))
	if strings.TrimSpace(security) != "" {
		blocks = append(blocks, domain.DetailBlock{Title: DetailSecurityChanges, Body: security})
	}
	return blocks
}

// EffectiveStackDrift combines the coordinator verdict with the resource-level
// signal. An empty status means the coordinator never reached the stack.
func EffectiveStackDrift(status domain.StackDriftStatus, anyDrift bool) domain.StackDriftStatus {
	if anyDrift || status == domain.StackDrifted {
		return domain.StackDrifted
	}
	if status == "" {
		return domain.StackDriftUnknown
	}
	return status
}

func classificationOf(diff ports.Diff, id domain.ResourceKey) domain.ChangeClassification {
	if diff == nil {
		return domain.ChangeNoChange
	}
	c := diff.ClassificationOf(id)
	if c == "" {
		return domain.ChangeNoChange
	}
	return c
}

func sortRows(rows []domain.ReconciliationRow) {
	slices.SortFunc(rows, func(a, b domain.ReconciliationRow) int {
		return cmp.Or(
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.DisplayName, b.DisplayName),
			cmp.Compare(a.LogicalID, b.LogicalID),
		)
	})
}
