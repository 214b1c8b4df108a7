package ports

import "github.com/olusolaa/cfn-diff-reporter/internal/core/domain"

// Diff is the narrow view of a template diff the merge engine depends on.
type Diff interface {
	// ClassificationOf returns ChangeNoChange for ids the diff does not know.
	ClassificationOf(id domain.ResourceKey) domain.ChangeClassification
	// ForEachChange visits every changed resource in ascending logical id order.
	ForEachChange(fn func(change domain.ResourceChange))
}

type DiffEngine interface {
	ComputeDiff(current, target *domain.Template) (Diff, error)
}

// DiffFormatter renders free-text detail blocks. Output may contain terminal
// styling.
type DiffFormatter interface {
	FormatDifferences(diff Diff) string
	FormatSecurityChanges(diff Diff) string
}
