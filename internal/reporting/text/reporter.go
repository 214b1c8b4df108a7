package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
)

const SinkTypeText = "text"

type Config struct {
	NoColor bool `mapstructure:"no_color"`
}

// Reporter prints reports as aligned tables to a terminal.
type Reporter struct {
	config  Config
	writer  io.Writer
	logger  ports.Logger
	noColor bool
	mu      sync.Mutex
}

var _ ports.DocumentSink = (*Reporter)(nil)

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	r, err := NewReporterWithWriter(cfg, os.Stdout, logger)
	if err != nil {
		return nil, err
	}
	if !isTerminal(os.Stdout) {
		r.noColor = true
	}
	return r, nil
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) (*Reporter, error) {
	return &Reporter{
		config:  cfg,
		writer:  w,
		logger:  logger,
		noColor: cfg.NoColor,
	}, nil
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) Type() string {
	return SinkTypeText
}

func (r *Reporter) Publish(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bold := r.colorFunc(color.Bold)
	red := r.colorFunc(color.FgRed)

	fmt.Fprintln(r.writer, bold(report.Heading))
	fmt.Fprintln(r.writer, strings.Repeat("=", len(report.Heading)))
	if report.StackURL != "" {
		fmt.Fprintln(r.writer, report.StackURL)
	}
	if report.Subheading != "" {
		fmt.Fprintf(r.writer, "\n%s\n", report.Subheading)
	}
	if report.Banner != nil {
		fmt.Fprintf(r.writer, "%s %s\n", red(report.Banner.Text+":"), report.Banner.URL)
	}
	fmt.Fprintln(r.writer)

	if len(report.Rows) == 0 {
		fmt.Fprintln(r.writer, report.Placeholder)
	} else {
		tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
		headers := make([]string, len(report.Columns))
		rules := make([]string, len(report.Columns))
		for i, c := range report.Columns {
			headers[i] = string(c)
			rules[i] = strings.Repeat("-", len(c))
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
		fmt.Fprintln(tw, strings.Join(rules, "\t"))
		for _, row := range report.Rows {
			cells := make([]string, len(report.Columns))
			for i, c := range report.Columns {
				cells[i] = r.cell(row, c)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, d := range report.Details {
		fmt.Fprintf(r.writer, "\n%s\n%s\n", bold(d.Title), strings.TrimRight(d.Body, "\n"))
	}
	fmt.Fprintln(r.writer)

	r.logger.Debugf(ctx, "Text report for %s written", report.StackName)
	return nil
}

// cell colors the diff and drift columns. Padding is computed by tabwriter on
// the escaped text, so every cell of a column is wrapped the same way.
func (r *Reporter) cell(row domain.ReconciliationRow, col domain.Column) string {
	value := row.Cell(col)
	switch col {
	case domain.ColumnDiff:
		return r.colorFunc(changeColor(row.Classification))(padLabel(value))
	case domain.ColumnDrift:
		attr := color.FgGreen
		if row.DriftStatus != nil && row.DriftStatus.IsDrift() {
			attr = color.FgRed
		}
		return r.colorFunc(attr)(padLabel(value))
	}
	return value
}

// padLabel keeps empty cells visible in the table.
func padLabel(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func changeColor(c domain.ChangeClassification) color.Attribute {
	switch c {
	case domain.ChangeCreate:
		return color.FgGreen
	case domain.ChangeDestroy:
		return color.FgRed
	case domain.ChangeReplace, domain.ChangeMayReplace:
		return color.FgMagenta
	case domain.ChangeOrphan:
		return color.FgCyan
	default:
		return color.FgYellow
	}
}

func (r *Reporter) colorFunc(attr color.Attribute) func(a ...any) string {
	c := color.New(attr)
	if r.noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.SprintFunc()
}
