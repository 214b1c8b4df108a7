package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/notify/github"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/s3"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/targets"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/template"
	"github.com/olusolaa/cfn-diff-reporter/internal/config"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/service"
	"github.com/olusolaa/cfn-diff-reporter/internal/diff"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
	"github.com/olusolaa/cfn-diff-reporter/internal/metrics"
	"github.com/olusolaa/cfn-diff-reporter/internal/reporting/json"
	"github.com/olusolaa/cfn-diff-reporter/internal/reporting/markdown"
	"github.com/olusolaa/cfn-diff-reporter/internal/reporting/text"
)

type buildOptions struct {
	providerOpts []aws.ProviderOption
	getenv       func(string) string
}

// BuildOption adjusts how the application is wired, mostly for tests.
type BuildOption func(*buildOptions)

func WithProviderOptions(opts ...aws.ProviderOption) BuildOption {
	return func(b *buildOptions) {
		b.providerOpts = append(b.providerOpts, opts...)
	}
}

func WithGetenv(getenv func(string) string) BuildOption {
	return func(b *buildOptions) {
		b.getenv = getenv
	}
}

// BuildApplicationFromViper loads the configuration held by v, creates the
// logger and wires the application.
func BuildApplicationFromViper(ctx context.Context, v *viper.Viper, opts ...BuildOption) (*Application, error) {
	cfg, err := config.Load(ctx, v)
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLogger(log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	logger.Debugf(ctx, "Logger initialized (Level: %s, Format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	} else {
		logger.Debugf(ctx, "No configuration file found, using defaults/env/flags.")
	}

	if override := v.GetString(StackOverrideKey); override != "" {
		logger.Debugf(ctx, "Applying stack overrides from command line: %s", override)
		applyStackOverrides(ctx, cfg, override, logger)
	}

	return Build(ctx, cfg, logger, opts...)
}

// Build wires every component named by cfg.
func Build(ctx context.Context, cfg *config.Config, logger ports.Logger, opts ...BuildOption) (*Application, error) {
	b := &buildOptions{getenv: os.Getenv}
	for _, opt := range opts {
		opt(b)
	}

	provLog := logger.WithFields(map[string]any{"component": "platform"})
	provider, err := aws.NewProvider(ctx, cfg.Platform.AWS, provLog, b.providerOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize AWS provider")
	}
	provider.LogCallerIdentity(ctx)

	recorder := metrics.New()
	registry := service.NewComponentRegistry()
	logger.Debugf(ctx, "Component registry initialized")

	if err := registerSinks(ctx, cfg, provider, registry, logger); err != nil {
		return nil, err
	}
	if err := registerNotifiers(ctx, cfg, provider, registry, logger, b.getenv); err != nil {
		return nil, err
	}

	parser := template.NewParser(logger)
	stacks := provider.CloudFormation(parser)

	var drift *service.DriftCoordinator
	if cfg.Drift.Enabled {
		drift, err = service.NewDriftCoordinator(stacks, logger, cfg.Drift.RetryPolicy(),
			service.WithDriftMetrics(recorder),
			service.WithDriftConcurrency(cfg.Settings.Concurrency),
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize drift coordinator")
		}
		logger.Infof(ctx, "Drift detection enabled (max attempts %d, timeout %dms)", cfg.Drift.MaxAttempts, cfg.Drift.TimeoutMS)
	}

	assembler, err := service.NewAssembler(provider.Region(), registry, logger, recorder)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize report assembler")
	}

	logger.Debugf(ctx, "Initializing reconciliation engine")
	engine, err := service.NewReconciliationEngine(
		targets.NewResolver(cfg.Targets.StackMap(), cfg.Targets.CDKOutDir, logger),
		parser,
		stacks,
		drift,
		diff.NewEngine(),
		diff.NewFormatter(),
		assembler,
		recorder,
		logger,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize reconciliation engine")
	}

	logger.Infof(ctx, "Application bootstrap complete")
	return &Application{
		Engine:   engine,
		Logger:   logger,
		Config:   cfg,
		Metrics:  recorder,
		Registry: registry,
	}, nil
}

func registerSinks(ctx context.Context, cfg *config.Config, provider *aws.Provider, registry *service.ComponentRegistry, logger ports.Logger) error {
	for _, sinkType := range cfg.Report.Sinks {
		sinkLog := logger.WithFields(map[string]any{"component": "reporter", "type": sinkType})

		var sink ports.DocumentSink
		var err error
		switch sinkType {
		case text.SinkTypeText:
			sink, err = text.NewReporter(cfg.Report.Text, sinkLog)
		case json.SinkTypeJSON:
			sink, err = json.NewReporter(cfg.Report.JSON, sinkLog)
		case markdown.SinkTypeMarkdown:
			sink, err = markdown.NewSink(cfg.Report.Markdown, sinkLog)
		case s3.SinkTypeS3:
			if cfg.Report.S3 == nil {
				return errors.NewUserFacing(errors.CodeConfigValidation, "s3 sink enabled without report.s3 settings", "Configure report.s3.bucket.")
			}
			sink, err = provider.S3Sink(*cfg.Report.S3)
		default:
			return errors.NewUserFacing(errors.CodeConfigValidation, fmt.Sprintf("unsupported report sink: %s", sinkType), "Supported: text, json, markdown, s3")
		}
		if err != nil {
			return errors.Wrap(err, errors.CodeConfigValidation, fmt.Sprintf("failed to initialize %s sink", sinkType))
		}
		if err := registry.RegisterDocumentSink(sink); err != nil {
			return err
		}
		sinkLog.Debugf(ctx, "Registered %s report sink", sinkType)
	}
	return nil
}

func registerNotifiers(ctx context.Context, cfg *config.Config, provider *aws.Provider, registry *service.ComponentRegistry, logger ports.Logger, getenv func(string) string) error {
	if gh := cfg.Notify.GitHub; gh != nil {
		ghCfg := *gh
		if ghCfg.Token == "" {
			ghCfg.Token = getenv("GITHUB_TOKEN")
		}
		run, err := github.RunContextFromEnv(getenv)
		if err != nil {
			logger.Warnf(ctx, "GitHub notifier disabled: %v", err)
		} else {
			notifier, err := github.NewNotifier(ghCfg, run, logger)
			if err != nil {
				return err
			}
			if err := registry.RegisterNotifier(notifier); err != nil {
				return err
			}
			logger.Debugf(ctx, "Registered GitHub notifier for %s/%s", run.Owner, run.Repo)
		}
	}

	if cfg.Notify.SNS != nil {
		notifier, err := provider.SNSNotifier(*cfg.Notify.SNS)
		if err != nil {
			return err
		}
		if err := registry.RegisterNotifier(notifier); err != nil {
			return err
		}
		logger.Debugf(ctx, "Registered SNS notifier for %s", cfg.Notify.SNS.TopicARN)
	}
	return nil
}
