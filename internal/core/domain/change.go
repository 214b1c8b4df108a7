package domain

// ChangeClassification is the diff verdict for one logical resource.
type ChangeClassification string

const (
	ChangeNoChange   ChangeClassification = "NO_CHANGE"
	ChangeCreate     ChangeClassification = "WILL_CREATE"
	ChangeUpdate     ChangeClassification = "WILL_UPDATE"
	ChangeReplace    ChangeClassification = "WILL_REPLACE"
	ChangeMayReplace ChangeClassification = "MAY_REPLACE"
	ChangeDestroy    ChangeClassification = "WILL_DESTROY"
	ChangeOrphan     ChangeClassification = "WILL_ORPHAN"
)

// Label is the short human-readable name, "" for NoChange and unknown values.
func (c ChangeClassification) Label() string {
	switch c {
	case ChangeCreate:
		return "Create"
	case ChangeUpdate:
		return "Update"
	case ChangeReplace:
		return "Replace"
	case ChangeMayReplace:
		return "May Replace"
	case ChangeDestroy:
		return "Destroy"
	case ChangeOrphan:
		return "Orphan"
	default:
		return ""
	}
}

// severity orders classifications for aggregating property-level impacts.
func (c ChangeClassification) severity() int {
	switch c {
	case ChangeUpdate:
		return 1
	case ChangeMayReplace:
		return 2
	case ChangeReplace:
		return 3
	default:
		return 0
	}
}

// MoreSevere returns the stronger of two property-level impacts.
func MoreSevere(a, b ChangeClassification) ChangeClassification {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// PropertyChange is one differing property of an updated resource.
type PropertyChange struct {
	Name   string
	Old    any
	New    any
	Impact ChangeClassification
}

// ResourceChange describes how one logical resource differs between the
// deployed and the target template. Old or New is nil when the resource only
// exists on one side.
type ResourceChange struct {
	LogicalID       ResourceKey
	Classification  ChangeClassification
	Old             *TemplateResource
	New             *TemplateResource
	PropertyChanges []PropertyChange
	OtherChanges    []string
}

// ResourceType prefers the target declaration.
func (c ResourceChange) ResourceType() string {
	if c.New != nil {
		return c.New.Type
	}
	if c.Old != nil {
		return c.Old.Type
	}
	return ""
}
