package sns

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	awserrors "github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/limiter"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	idderrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const (
	NotifierTypeSNS = "sns"
	serviceName     = "sns"
	// maxSubjectLength is the SNS limit for email subjects.
	maxSubjectLength = 100
)

type Config struct {
	TopicARN string `mapstructure:"topic_arn" validate:"required"`
	// OnlyChanges skips reports without rows or a drift banner.
	OnlyChanges bool `mapstructure:"only_changes"`
}

type Notifier struct {
	config       Config
	client       SNSClientInterface
	limiter      shared.RateLimiter
	errorHandler shared.ErrorHandler
	logger       ports.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NotifierOption defines a function signature for configuring the Notifier.
type NotifierOption func(*Notifier)

// WithSNSClient provides an option to set a custom SNS client.
func WithSNSClient(client SNSClientInterface) NotifierOption {
	return func(n *Notifier) {
		if client != nil {
			n.client = client
		}
	}
}

// WithRateLimiter provides an option to set a shared rate limiter.
func WithRateLimiter(l shared.RateLimiter) NotifierOption {
	return func(n *Notifier) {
		if l != nil {
			n.limiter = l
		}
	}
}

// WithErrorHandler provides an option to set a custom error handler.
func WithErrorHandler(handler shared.ErrorHandler) NotifierOption {
	return func(n *Notifier) {
		if handler != nil {
			n.errorHandler = handler
		}
	}
}

func NewNotifier(cfg aws.Config, notifyCfg Config, logger ports.Logger, opts ...NotifierOption) (*Notifier, error) {
	if strings.TrimSpace(notifyCfg.TopicARN) == "" {
		return nil, idderrors.NewUserFacing(idderrors.CodeConfigValidation, "sns notifier requires a topic ARN", "Set notify.sns.topic_arn in the configuration.")
	}
	n := &Notifier{
		config: notifyCfg,
		logger: logger.WithFields(map[string]any{"component": "sns_notifier"}),
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.client == nil {
		n.client = sns.NewFromConfig(cfg)
	}
	if n.limiter == nil {
		n.limiter = limiter.New(limiter.DefaultRPS, logger)
	}
	if n.errorHandler == nil {
		n.errorHandler = &awserrors.DefaultErrorHandler{}
	}
	return n, nil
}

func (n *Notifier) Type() string {
	return NotifierTypeSNS
}

func (n *Notifier) Notify(ctx context.Context, report *domain.Report) error {
	if n.config.OnlyChanges && !report.HasChanges() && report.Banner == nil {
		n.logger.Debugf(ctx, "No changes for %s, notification skipped", report.StackName)
		return nil
	}
	if err := n.limiter.Wait(ctx, n.logger); err != nil {
		return err
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Subject:  aws.String(Subject(report)),
		Message:  aws.String(Message(report)),
	})
	if err != nil {
		handled := n.errorHandler.Handle(serviceName, "Publish", err, ctx)
		return idderrors.Wrap(handled, idderrors.CodeNotifyError, "failed to publish SNS notification")
	}
	n.logger.Debugf(ctx, "SNS notification for %s published (message id %s)", report.StackName, aws.ToString(out.MessageId))
	return nil
}

// Subject summarizes a report in a single line within the SNS limit.
func Subject(report *domain.Report) string {
	var s string
	switch {
	case report.Banner != nil:
		s = fmt.Sprintf("%s: %d changes, drift detected", report.StackName, len(report.Rows))
	case report.Kind == domain.ReportResourceList:
		s = fmt.Sprintf("%s: new stack with %d resources", report.StackName, len(report.Rows))
	default:
		s = fmt.Sprintf("%s: %d changes", report.StackName, len(report.Rows))
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxSubjectLength {
		s = s[:maxSubjectLength-3] + "..."
	}
	return s
}

// Message renders a plain text body for email subscribers.
func Message(report *domain.Report) string {
	var b strings.Builder
	b.WriteString(report.Heading + "\n")
	if report.StackURL != "" {
		b.WriteString(report.StackURL + "\n")
	}
	if report.Banner != nil {
		fmt.Fprintf(&b, "%s: %s\n", report.Banner.Text, report.Banner.URL)
	}
	b.WriteString("\n")
	if len(report.Rows) == 0 {
		b.WriteString(report.Placeholder + "\n")
		return b.String()
	}
	for _, row := range report.Rows {
		cells := make([]string, 0, len(report.Columns))
		for _, c := range report.Columns {
			if v := row.Cell(c); v != "" {
				cells = append(cells, v)
			}
		}
		b.WriteString("- " + strings.Join(cells, " | ") + "\n")
	}
	return b.String()
}
