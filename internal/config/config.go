package config

import (
	"slices"
	"time"

	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/notify/github"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/s3"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/sns"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/service"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
	"github.com/olusolaa/cfn-diff-reporter/internal/reporting/json"
	"github.com/olusolaa/cfn-diff-reporter/internal/reporting/markdown"
	"github.com/olusolaa/cfn-diff-reporter/internal/reporting/text"
)

type Config struct {
	Settings SettingsConfig `mapstructure:"settings"`
	Targets  TargetsConfig  `mapstructure:"targets"`
	Drift    DriftConfig    `mapstructure:"drift"`
	Platform PlatformConfig `mapstructure:"platform"`
	Report   ReportConfig   `mapstructure:"report"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type SettingsConfig struct {
	LogLevel    log.Level  `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   log.Format `mapstructure:"log_format" validate:"oneof=text json"`
	Concurrency int        `mapstructure:"concurrency" validate:"min=1,max=100"`
}

type TargetsConfig struct {
	// Stacks lists explicit templates. When empty the CDK cloud assembly in
	// CDKOutDir is used. A list keeps stack names case sensitive, which
	// configuration map keys are not.
	Stacks    []StackTarget `mapstructure:"stacks" validate:"dive"`
	CDKOutDir string        `mapstructure:"cdk_out_dir"`
}

type StackTarget struct {
	Name     string `mapstructure:"name" validate:"required"`
	Template string `mapstructure:"template" validate:"required"`
}

// StackMap returns the explicit targets keyed by stack name. A later entry
// wins over an earlier one with the same name.
func (t TargetsConfig) StackMap() map[string]string {
	out := make(map[string]string, len(t.Stacks))
	for _, s := range t.Stacks {
		out[s.Name] = s.Template
	}
	return out
}

type DriftConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	DelayMS     int  `mapstructure:"delay_ms" validate:"min=0"`
	MaxAttempts int  `mapstructure:"max_attempts" validate:"min=1,max=100"`
	TimeoutMS   int  `mapstructure:"timeout_ms" validate:"min=1"`
}

type PlatformConfig struct {
	AWS aws.Config `mapstructure:"aws"`
}

type ReportConfig struct {
	Sinks    []string        `mapstructure:"sinks" validate:"min=1,unique,dive,oneof=text json markdown s3"`
	Text     text.Config     `mapstructure:"text"`
	JSON     json.Config     `mapstructure:"json"`
	Markdown markdown.Config `mapstructure:"markdown"`
	S3       *s3.Config      `mapstructure:"s3"`
}

type NotifyConfig struct {
	GitHub *github.Config `mapstructure:"github"`
	SNS    *sns.Config    `mapstructure:"sns"`
}

type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// RetryPolicy converts the drift settings for the coordinator.
func (d DriftConfig) RetryPolicy() service.RetryPolicy {
	return service.RetryPolicy{
		BaseDelay:   ms(d.DelayMS),
		MaxAttempts: d.MaxAttempts,
		Timeout:     ms(d.TimeoutMS),
	}
}

// HasSink reports whether the sink type is configured.
func (r ReportConfig) HasSink(sinkType string) bool {
	return slices.Contains(r.Sinks, sinkType)
}

func DefaultConfig() *Config {
	policy := service.DefaultRetryPolicy()
	logCfg := log.DefaultConfig()
	return &Config{
		Settings: SettingsConfig{
			LogLevel:    logCfg.Level,
			LogFormat:   logCfg.Format,
			Concurrency: 10,
		},
		Targets: TargetsConfig{
			CDKOutDir: "cdk.out",
		},
		Drift: DriftConfig{
			Enabled:     false,
			DelayMS:     int(policy.BaseDelay.Milliseconds()),
			MaxAttempts: policy.MaxAttempts,
			TimeoutMS:   int(policy.Timeout.Milliseconds()),
		},
		Report: ReportConfig{
			Sinks: []string{text.SinkTypeText},
		},
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
