package markdown

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	apperrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const (
	SinkTypeMarkdown = "markdown"
	// StepSummaryEnv names the file GitHub Actions renders as the job summary.
	StepSummaryEnv = "GITHUB_STEP_SUMMARY"
)

type Config struct {
	Path string `mapstructure:"path"`
}

// Sink appends rendered reports to a file.
type Sink struct {
	path   string
	logger ports.Logger
	mu     sync.Mutex
}

var _ ports.DocumentSink = (*Sink)(nil)

// NewSink falls back to $GITHUB_STEP_SUMMARY when no path is configured.
func NewSink(cfg Config, logger ports.Logger) (*Sink, error) {
	path := cfg.Path
	if path == "" {
		path = os.Getenv(StepSummaryEnv)
	}
	if path == "" {
		return nil, apperrors.NewUserFacing(
			apperrors.CodeConfigValidation,
			"markdown sink has no output file",
			fmt.Sprintf("Set report.markdown.path or run inside GitHub Actions where %s is defined.", StepSummaryEnv),
		)
	}
	return &Sink{
		path:   path,
		logger: logger.WithFields(map[string]any{"component": "markdown_sink"}),
	}, nil
}

func (s *Sink) Type() string {
	return SinkTypeMarkdown
}

func (s *Sink) Path() string {
	return s.path
}

func (s *Sink) Publish(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodePublishError, fmt.Sprintf("failed to open markdown output %s", s.path))
	}
	defer f.Close()

	if _, err := f.WriteString(Render(report)); err != nil {
		return apperrors.Wrap(err, apperrors.CodePublishError, fmt.Sprintf("failed to write markdown output %s", s.path))
	}
	s.logger.Debugf(ctx, "Markdown report for %s appended to %s", report.StackName, s.path)
	return nil
}
