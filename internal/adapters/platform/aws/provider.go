package aws

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"

	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/cloudformation"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/limiter"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/s3"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/sns"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const sessionPrefix = "cfn-diff-"

type Config struct {
	Region       string `mapstructure:"region"`
	Profile      string `mapstructure:"profile"`
	RoleToAssume string `mapstructure:"role_to_assume"`
	APIRPS       int    `mapstructure:"api_rps" validate:"omitempty,min=1,max=100"`
}

// Provider owns the AWS configuration of a run and builds the adapters that
// share its credentials and rate limiter.
type Provider struct {
	awsConfig aws.Config
	loaded    bool
	limiter   *limiter.Limiter
	sts       shared.STSClientInterface
	logger    ports.Logger
}

// ProviderOption defines a function signature for configuring the Provider.
type ProviderOption func(*Provider)

// WithAWSConfig skips loading the default configuration chain.
func WithAWSConfig(cfg aws.Config) ProviderOption {
	return func(p *Provider) {
		p.awsConfig = cfg
		p.loaded = true
	}
}

// WithSTSClient provides an option to set a custom STS client.
func WithSTSClient(client shared.STSClientInterface) ProviderOption {
	return func(p *Provider) {
		if client != nil {
			p.sts = client
		}
	}
}

func NewProvider(ctx context.Context, cfg Config, logger ports.Logger, opts ...ProviderOption) (*Provider, error) {
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil for AWS Provider")
	}
	p := &Provider{logger: logger.WithFields(map[string]any{"provider": shared.ProviderTypeAWS})}
	for _, opt := range opts {
		opt(p)
	}

	if !p.loaded {
		var loadOpts []func(*config.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
		}
		if cfg.Profile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.WrapUserFacing(err, errors.CodeConfigValidation, "failed to load default AWS config",
				"Check the AWS profile and credential environment variables.")
		}
		p.awsConfig = awsCfg
	} else if cfg.Region != "" {
		p.awsConfig.Region = cfg.Region
	}

	if strings.TrimSpace(p.awsConfig.Region) == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "AWS region is not set",
			"Pass --region, set platform.aws.region or export AWS_REGION.")
	}

	if cfg.RoleToAssume != "" {
		session := SessionName()
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(p.awsConfig), cfg.RoleToAssume, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = session
		})
		p.awsConfig.Credentials = aws.NewCredentialsCache(provider)
		p.logger.Debugf(ctx, "Assuming role %s with session %s", cfg.RoleToAssume, session)
	}

	if p.sts == nil {
		p.sts = sts.NewFromConfig(p.awsConfig)
	}
	p.limiter = limiter.New(cfg.APIRPS, logger)
	return p, nil
}

// SessionName is unique per call and within the 64 character STS limit.
func SessionName() string {
	return sessionPrefix + uuid.NewString()
}

func (p *Provider) Type() string {
	return shared.ProviderTypeAWS
}

func (p *Provider) Region() string {
	return p.awsConfig.Region
}

func (p *Provider) AWSConfig() aws.Config {
	return p.awsConfig
}

func (p *Provider) Limiter() shared.RateLimiter {
	return p.limiter
}

// LogCallerIdentity records which principal the run acts as. Failures are
// only logged; the first real API call reports credential problems.
func (p *Provider) LogCallerIdentity(ctx context.Context) {
	if err := p.limiter.Wait(ctx, p.logger); err != nil {
		return
	}
	out, err := p.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		p.logger.Warnf(ctx, "Could not resolve AWS caller identity: %v", err)
		return
	}
	p.logger.Infof(ctx, "Using AWS account %s as %s in %s", aws.ToString(out.Account), aws.ToString(out.Arn), p.awsConfig.Region)
}

// CloudFormation builds the stack reader and drift API adapter.
func (p *Provider) CloudFormation(parser ports.TemplateParser, opts ...cloudformation.HandlerOption) *cloudformation.Handler {
	base := []cloudformation.HandlerOption{
		cloudformation.WithRateLimiter(p.limiter),
		cloudformation.WithTemplateParser(parser),
	}
	return cloudformation.NewHandler(p.awsConfig, p.logger, append(base, opts...)...)
}

func (p *Provider) S3Sink(cfg s3.Config, opts ...s3.SinkOption) (*s3.Sink, error) {
	base := []s3.SinkOption{s3.WithRateLimiter(p.limiter)}
	return s3.NewSink(p.awsConfig, cfg, p.logger, append(base, opts...)...)
}

func (p *Provider) SNSNotifier(cfg sns.Config, opts ...sns.NotifierOption) (*sns.Notifier, error) {
	base := []sns.NotifierOption{sns.WithRateLimiter(p.limiter)}
	return sns.NewNotifier(p.awsConfig, cfg, p.logger, append(base, opts...)...)
}
