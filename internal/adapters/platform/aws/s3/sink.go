package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	awserrors "github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/limiter"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	idderrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/reporting/markdown"
)

const (
	SinkTypeS3  = "s3"
	serviceName = "s3"
	contentType = "text/markdown; charset=utf-8"
)

type Config struct {
	Bucket string `mapstructure:"bucket" validate:"required"`
	Prefix string `mapstructure:"prefix"`
}

// Sink uploads the rendered markdown of each report to {prefix}{stack}.md.
type Sink struct {
	config       Config
	client       S3ClientInterface
	limiter      shared.RateLimiter
	errorHandler shared.ErrorHandler
	logger       ports.Logger
}

var _ ports.DocumentSink = (*Sink)(nil)

// SinkOption defines a function signature for configuring the Sink.
type SinkOption func(*Sink)

// WithS3Client provides an option to set a custom S3 client.
func WithS3Client(client S3ClientInterface) SinkOption {
	return func(s *Sink) {
		if client != nil {
			s.client = client
		}
	}
}

// WithRateLimiter provides an option to set a shared rate limiter.
func WithRateLimiter(l shared.RateLimiter) SinkOption {
	return func(s *Sink) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithErrorHandler provides an option to set a custom error handler.
func WithErrorHandler(handler shared.ErrorHandler) SinkOption {
	return func(s *Sink) {
		if handler != nil {
			s.errorHandler = handler
		}
	}
}

func NewSink(cfg aws.Config, sinkCfg Config, logger ports.Logger, opts ...SinkOption) (*Sink, error) {
	if strings.TrimSpace(sinkCfg.Bucket) == "" {
		return nil, idderrors.NewUserFacing(idderrors.CodeConfigValidation, "s3 sink requires a bucket", "Set report.s3.bucket in the configuration.")
	}
	s := &Sink{
		config: sinkCfg,
		logger: logger.WithFields(map[string]any{"component": "s3_sink", "bucket": sinkCfg.Bucket}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = s3.NewFromConfig(cfg)
	}
	if s.limiter == nil {
		s.limiter = limiter.New(limiter.DefaultRPS, logger)
	}
	if s.errorHandler == nil {
		s.errorHandler = &awserrors.DefaultErrorHandler{}
	}
	return s, nil
}

func (s *Sink) Type() string {
	return SinkTypeS3
}

// Key is the object key a report is stored under.
func (s *Sink) Key(report *domain.Report) string {
	return s.config.Prefix + report.StackName + ".md"
}

func (s *Sink) Publish(ctx context.Context, report *domain.Report) error {
	if err := s.limiter.Wait(ctx, s.logger); err != nil {
		return err
	}

	key := s.Key(report)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(markdown.Render(report)),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		handled := s.errorHandler.Handle(serviceName, "PutObject", err, ctx)
		return idderrors.Wrap(handled, idderrors.CodePublishError, fmt.Sprintf("failed to upload report to s3://%s/%s", s.config.Bucket, key))
	}
	s.logger.Debugf(ctx, "Report for %s uploaded to s3://%s/%s", report.StackName, s.config.Bucket, key)
	return nil
}
