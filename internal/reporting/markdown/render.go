package markdown

import (
	"fmt"
	"html"
	"strings"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
)

// Render produces the job summary document for one report. The output is
// HTML embedded in GitHub flavored markdown, one element per line.
func Render(report *domain.Report) string {
	if report == nil {
		return ""
	}
	var b strings.Builder

	heading(&b, 1, ":books: "+title(report))
	if report.Subheading != "" {
		heading(&b, 2, html.EscapeString(report.Subheading))
	}
	if report.Banner != nil {
		heading(&b, 3, fmt.Sprintf(`:fire: <a href="%s">%s</a> :fire:`, html.EscapeString(report.Banner.URL), html.EscapeString(report.Banner.Text)))
	}

	if len(report.Rows) > 0 {
		table(&b, report.Columns, report.Rows)
	} else if report.Placeholder != "" {
		heading(&b, 3, html.EscapeString(report.Placeholder))
	}

	for _, d := range report.Details {
		fmt.Fprintf(&b, "<details><summary>%s</summary><pre>%s</pre></details>\n", html.EscapeString(d.Title), html.EscapeString(d.Body))
	}
	return b.String()
}

func title(report *domain.Report) string {
	name := html.EscapeString(report.StackName)
	if report.StackURL == "" {
		return name + " Stack Resources"
	}
	return fmt.Sprintf(`<a href="%s">%s Stack</a> Resources`, html.EscapeString(report.StackURL), name)
}

func heading(b *strings.Builder, level int, text string) {
	fmt.Fprintf(b, "<h%d>%s</h%d>\n", level, text, level)
}

func table(b *strings.Builder, columns []domain.Column, rows []domain.ReconciliationRow) {
	b.WriteString("<table><tr>")
	for _, c := range columns {
		fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(string(c)))
	}
	b.WriteString("</tr>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, c := range columns {
			fmt.Fprintf(b, "<td>%s</td>", html.EscapeString(Cell(row, c)))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>\n")
}

// Cell decorates a row value with the emoji label used in job summaries.
func Cell(row domain.ReconciliationRow, col domain.Column) string {
	switch col {
	case domain.ColumnDiff:
		return ChangeLabel(row.Classification)
	case domain.ColumnDrift:
		if row.DriftStatus == nil {
			return ""
		}
		return DriftLabel(*row.DriftStatus)
	default:
		return row.Cell(col)
	}
}

func ChangeLabel(c domain.ChangeClassification) string {
	switch c {
	case domain.ChangeUpdate:
		return ":speech_balloon: Update"
	case domain.ChangeCreate:
		return ":sparkles: Create"
	case domain.ChangeReplace:
		return ":hammer_and_wrench: Replace"
	case domain.ChangeMayReplace:
		return ":wrench: May Replace"
	case domain.ChangeDestroy:
		return ":bomb: Destroy"
	case domain.ChangeOrphan:
		return ":ghost: Orphan"
	default:
		return ""
	}
}

func DriftLabel(s domain.ResourceDriftStatus) string {
	switch s {
	case domain.ResourceDeleted:
		return ":bomb: DELETED"
	case domain.ResourceInSync:
		return ":heavy_check_mark: IN_SYNC"
	case domain.ResourceModified:
		return ":fire: MODIFIED"
	case domain.ResourceNotChecked:
		return ":see_no_evil: NOT_CHECKED"
	case domain.ResourceUnknown:
		return ":question: UNKNOWN"
	default:
		return ""
	}
}
