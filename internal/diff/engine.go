package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/pkg/compare"
)

// Engine computes logical-id keyed differences between two templates.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// TemplateDiff is the result of comparing a deployed template with a target
// template. Only changed resources are stored.
type TemplateDiff struct {
	changes map[domain.ResourceKey]domain.ResourceChange
	order   []domain.ResourceKey
}

var _ ports.Diff = (*TemplateDiff)(nil)
var _ ports.DiffEngine = (*Engine)(nil)

// ComputeDiff classifies every resource declared in either template. A nil
// template is treated as empty.
func (e *Engine) ComputeDiff(current, target *domain.Template) (ports.Diff, error) {
	return Compute(current, target), nil
}

// Compute is ComputeDiff with the concrete result type.
func Compute(current, target *domain.Template) *TemplateDiff {
	d := &TemplateDiff{changes: make(map[domain.ResourceKey]domain.ResourceChange)}

	ids := make(map[domain.ResourceKey]struct{})
	for _, t := range []*domain.Template{current, target} {
		if t == nil {
			continue
		}
		for id := range t.Resources {
			ids[id] = struct{}{}
		}
	}

	for id := range ids {
		oldRes, inCurrent := current.Resource(id)
		newRes, inTarget := target.Resource(id)

		var change domain.ResourceChange
		switch {
		case inTarget && !inCurrent:
			change = domain.ResourceChange{LogicalID: id, Classification: domain.ChangeCreate, New: &newRes}
		case inCurrent && !inTarget:
			change = domain.ResourceChange{LogicalID: id, Classification: removalOf(oldRes), Old: &oldRes}
		default:
			change = compareResource(id, oldRes, newRes)
		}
		if change.Classification == domain.ChangeNoChange {
			continue
		}
		d.changes[id] = change
		d.order = append(d.order, id)
	}
	sort.Strings(d.order)
	return d
}

func (d *TemplateDiff) ClassificationOf(id domain.ResourceKey) domain.ChangeClassification {
	if d == nil {
		return domain.ChangeNoChange
	}
	if c, ok := d.changes[id]; ok {
		return c.Classification
	}
	return domain.ChangeNoChange
}

func (d *TemplateDiff) ForEachChange(fn func(change domain.ResourceChange)) {
	if d == nil {
		return
	}
	for _, id := range d.order {
		fn(d.changes[id])
	}
}

// Len is the number of changed resources.
func (d *TemplateDiff) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Count returns how many resources carry the given classification.
func (d *TemplateDiff) Count(c domain.ChangeClassification) int {
	n := 0
	d.ForEachChange(func(change domain.ResourceChange) {
		if change.Classification == c {
			n++
		}
	})
	return n
}

func removalOf(res domain.TemplateResource) domain.ChangeClassification {
	switch res.DeletionPolicy {
	case "Retain", "RetainExceptOnCreate":
		return domain.ChangeOrphan
	default:
		return domain.ChangeDestroy
	}
}

func compareResource(id domain.ResourceKey, oldRes, newRes domain.TemplateResource) domain.ResourceChange {
	change := domain.ResourceChange{
		LogicalID:      id,
		Classification: domain.ChangeNoChange,
		Old:            &oldRes,
		New:            &newRes,
	}

	if oldRes.Type != newRes.Type {
		change.Classification = domain.ChangeReplace
		change.OtherChanges = append(change.OtherChanges, fmt.Sprintf("Type: %s → %s", oldRes.Type, newRes.Type))
		return change
	}

	keys := make(map[string]struct{}, len(oldRes.Properties)+len(newRes.Properties))
	for k := range oldRes.Properties {
		keys[k] = struct{}{}
	}
	for k := range newRes.Properties {
		keys[k] = struct{}{}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		oldVal, newVal := oldRes.Properties[name], newRes.Properties[name]
		if compare.Values(oldVal, newVal) {
			continue
		}
		impact := impactOf(newRes.Type, name, newVal)
		change.PropertyChanges = append(change.PropertyChanges, domain.PropertyChange{
			Name:   name,
			Old:    oldVal,
			New:    newVal,
			Impact: impact,
		})
		change.Classification = domain.MoreSevere(change.Classification, impact)
	}

	change.OtherChanges = append(change.OtherChanges, attributeChanges(oldRes, newRes)...)
	if len(change.OtherChanges) > 0 {
		change.Classification = domain.MoreSevere(change.Classification, domain.ChangeUpdate)
	}
	return change
}

// attributeChanges lists the resource attributes outside Properties that
// differ. Metadata is ignored.
func attributeChanges(oldRes, newRes domain.TemplateResource) []string {
	var out []string
	if oldRes.DeletionPolicy != newRes.DeletionPolicy {
		out = append(out, attributeLine("DeletionPolicy", oldRes.DeletionPolicy, newRes.DeletionPolicy))
	}
	if oldRes.UpdateReplacePolicy != newRes.UpdateReplacePolicy {
		out = append(out, attributeLine("UpdateReplacePolicy", oldRes.UpdateReplacePolicy, newRes.UpdateReplacePolicy))
	}
	if oldRes.Condition != newRes.Condition {
		out = append(out, attributeLine("Condition", oldRes.Condition, newRes.Condition))
	}
	oldDeps, newDeps := compare.StringSet(oldRes.DependsOn), compare.StringSet(newRes.DependsOn)
	if equal, details := compare.Sets(oldDeps, newDeps); !equal {
		out = append(out, "DependsOn: "+details)
	}
	return out
}

func attributeLine(name, oldVal, newVal string) string {
	return fmt.Sprintf("%s: %s → %s", name, orNone(oldVal), orNone(newVal))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
