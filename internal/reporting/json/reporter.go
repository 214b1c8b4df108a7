package json

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	apperrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const SinkTypeJSON = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	// Path appends one document per stack to a file instead of stdout.
	Path   string `mapstructure:"path"`
	Pretty bool   `mapstructure:"pretty"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
	mu     sync.Mutex
}

var _ ports.DocumentSink = (*Reporter)(nil)

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return NewReporterWithWriter(cfg, os.Stdout, logger)
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) (*Reporter, error) {
	return &Reporter{
		config: cfg,
		writer: w,
		logger: logger,
	}, nil
}

type jsonReport struct {
	Kind        domain.ReportKind       `json:"kind"`
	StackName   string                  `json:"stack_name"`
	StackID     string                  `json:"stack_id,omitempty"`
	StackURL    string                  `json:"stack_url,omitempty"`
	Heading     string                  `json:"heading"`
	Banner      *jsonBanner             `json:"banner,omitempty"`
	DriftMode   bool                    `json:"drift_mode"`
	StackDrift  domain.StackDriftStatus `json:"stack_drift,omitempty"`
	AnyDrift    bool                    `json:"any_drift"`
	Summary     map[string]int          `json:"summary"`
	Rows        []jsonRow               `json:"rows"`
	Placeholder string                  `json:"placeholder,omitempty"`
	Details     []jsonDetail            `json:"details,omitempty"`
}

type jsonBanner struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type jsonRow struct {
	Change     domain.ChangeClassification `json:"change"`
	Drift      string                      `json:"drift,omitempty"`
	Type       string                      `json:"type"`
	LogicalID  string                      `json:"logical_id"`
	PhysicalID string                      `json:"physical_id,omitempty"`
}

type jsonDetail struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func toJSONReport(report *domain.Report) jsonReport {
	out := jsonReport{
		Kind:        report.Kind,
		StackName:   report.StackName,
		StackID:     report.StackID,
		StackURL:    report.StackURL,
		Heading:     report.Heading,
		DriftMode:   report.DriftMode,
		StackDrift:  report.StackDrift,
		AnyDrift:    report.AnyDrift,
		Summary:     make(map[string]int),
		Rows:        make([]jsonRow, 0, len(report.Rows)),
		Placeholder: report.Placeholder,
	}
	if report.Banner != nil {
		out.Banner = &jsonBanner{Text: report.Banner.Text, URL: report.Banner.URL}
	}
	for _, row := range report.Rows {
		out.Summary[string(row.Classification)]++
		out.Rows = append(out.Rows, jsonRow{
			Change:     row.Classification,
			Drift:      row.Cell(domain.ColumnDrift),
			Type:       row.Type,
			LogicalID:  row.LogicalID,
			PhysicalID: row.DisplayName,
		})
	}
	for _, d := range report.Details {
		out.Details = append(out.Details, jsonDetail{Title: d.Title, Body: d.Body})
	}
	return out
}

func (r *Reporter) Publish(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		r.logger.Warnf(ctx, "JSON report generation cancelled.")
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.writer
	if r.config.Path != "" {
		f, err := os.OpenFile(r.config.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodePublishError, fmt.Sprintf("failed to open JSON output %s", r.config.Path))
		}
		defer f.Close()
		w = f
	}

	encoder := json.NewEncoder(w)
	if r.config.Pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(toJSONReport(report)); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return apperrors.Wrap(err, apperrors.CodePublishError, "failed to encode JSON report")
	}

	r.logger.Debugf(ctx, "JSON report for %s successfully generated.", report.StackName)
	return nil
}

func (r *Reporter) Type() string {
	return SinkTypeJSON
}
