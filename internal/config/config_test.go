package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if yaml != "" {
		path := filepath.Join(t.TempDir(), ConfigFileName+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, log.LevelInfo, cfg.Settings.LogLevel)
	assert.Equal(t, 10, cfg.Settings.Concurrency)
	assert.Equal(t, "cdk.out", cfg.Targets.CDKOutDir)
	assert.False(t, cfg.Drift.Enabled)
	assert.Equal(t, []string{"text"}, cfg.Report.Sinks)

	policy := cfg.Drift.RetryPolicy()
	assert.Equal(t, 3*time.Second, policy.BaseDelay)
	assert.Equal(t, 7, policy.MaxAttempts)
	assert.Equal(t, 6*time.Minute, policy.Timeout)
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(context.Background(), newViper(t, `
settings:
  log_level: debug
  log_format: json
targets:
  stacks:
    - name: AppStack
      template: templates/app.yaml
drift:
  enabled: true
  max_attempts: 3
platform:
  aws:
    region: eu-west-1
    api_rps: 5
report:
  sinks: [text, S3]
  s3:
    bucket: reports
    prefix: pr/
notify:
  sns:
    topic_arn: arn:aws:sns:eu-west-1:123456789012:deploys
`))
	require.NoError(t, err)

	assert.Equal(t, log.FormatJSON, cfg.Settings.LogFormat)
	assert.Equal(t, map[string]string{"AppStack": "templates/app.yaml"}, cfg.Targets.StackMap())
	assert.True(t, cfg.Drift.Enabled)
	assert.Equal(t, 3, cfg.Drift.MaxAttempts)
	assert.Equal(t, "eu-west-1", cfg.Platform.AWS.Region)
	assert.Equal(t, []string{"text", "s3"}, cfg.Report.Sinks)
	require.NotNil(t, cfg.Report.S3)
	assert.Equal(t, "reports", cfg.Report.S3.Bucket)
	require.NotNil(t, cfg.Notify.SNS)
	assert.Nil(t, cfg.Notify.GitHub)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CFN_DIFF_DRIFT_ENABLED", "true")
	t.Setenv("CFN_DIFF_TARGETS_STACKS", "A=a.json;B=b.yaml")
	t.Setenv("CFN_DIFF_REPORT_SINKS", "text,json")

	cfg, err := Load(context.Background(), newViper(t, ""))
	require.NoError(t, err)

	assert.True(t, cfg.Drift.Enabled)
	assert.Equal(t, []StackTarget{{Name: "A", Template: "a.json"}, {Name: "B", Template: "b.yaml"}}, cfg.Targets.Stacks)
	assert.Equal(t, []string{"text", "json"}, cfg.Report.Sinks)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"bad log level", "settings:\n  log_level: loud\n", "LogLevel"},
		{"zero concurrency", "settings:\n  concurrency: 0\n", "Concurrency"},
		{"unknown sink", "report:\n  sinks: [pdf]\n", "Sinks"},
		{"s3 without section", "report:\n  sinks: [s3]\n", "Config.Report.S3"},
		{"s3 without bucket", "report:\n  sinks: [s3]\n  s3:\n    prefix: x/\n", "Bucket"},
		{"sns without topic", "notify:\n  sns:\n    only_changes: true\n", "TopicARN"},
		{"stack without template", "targets:\n  stacks:\n    - name: A\n", "Template"},
		{"rps out of range", "platform:\n  aws:\n    api_rps: 500\n", "APIRPS"},
		{"too many drift attempts", "drift:\n  max_attempts: 101\n", "MaxAttempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), newViper(t, tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.CodeConfigValidation))
			msg, _, ok := errors.GetUserFacingMessage(err)
			assert.True(t, ok)
			assert.Contains(t, msg, tt.field)
		})
	}
}

func TestLoad_TypeMismatch(t *testing.T) {
	_, err := Load(context.Background(), newViper(t, "drift:\n  max_attempts: many\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConfigParseError))
}
