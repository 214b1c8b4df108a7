package domain

// ReconciliationRow is one renderable line of a change report.
type ReconciliationRow struct {
	Classification ChangeClassification
	DriftStatus    *ResourceDriftStatus
	Type           string
	LogicalID      ResourceKey
	DisplayName    string
}

type Column string

const (
	ColumnDiff       Column = "Diff"
	ColumnDrift      Column = "Drift"
	ColumnType       Column = "Type"
	ColumnLogicalID  Column = "Logical ID"
	ColumnPhysicalID Column = "Physical ID"
)

// Cell returns the plain value of the row for col. Renderers decorate it.
func (r ReconciliationRow) Cell(col Column) string {
	switch col {
	case ColumnDiff:
		return r.Classification.Label()
	case ColumnDrift:
		if r.DriftStatus == nil {
			return ""
		}
		return string(*r.DriftStatus)
	case ColumnType:
		return r.Type
	case ColumnLogicalID:
		return r.LogicalID
	case ColumnPhysicalID:
		return r.DisplayName
	default:
		return ""
	}
}

type ReportKind string

const (
	// ReportDifference compares a deployed stack with its target template.
	ReportDifference ReportKind = "difference"
	// ReportResourceList lists the resources of a stack that is not deployed yet.
	ReportResourceList ReportKind = "resource_list"
)

type Banner struct {
	Text string
	URL  string
}

type DetailBlock struct {
	Title string
	Body  string
}

// Report is the assembled, sink-independent document for one stack.
type Report struct {
	Kind        ReportKind
	StackName   string
	StackID     string
	StackURL    string
	Heading     string
	Subheading  string
	Banner      *Banner
	Columns     []Column
	Rows        []ReconciliationRow
	Placeholder string
	Details     []DetailBlock

	DriftMode  bool
	StackDrift StackDriftStatus
	AnyDrift   bool
}

// HasChanges reports whether the report carries at least one row.
func (r *Report) HasChanges() bool {
	return r != nil && len(r.Rows) > 0
}
