package app

import (
	"context"
	"path/filepath"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/notify/github"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/s3"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/sns"
	"github.com/olusolaa/cfn-diff-reporter/internal/config"
	idderrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
	"github.com/olusolaa/cfn-diff-reporter/mocks"
)

func testProvider(t *testing.T) BuildOption {
	t.Helper()
	stsClient := new(mocks.MockSTSClient)
	stsClient.On("GetCallerIdentity", mock.Anything, mock.Anything).Return(&sts.GetCallerIdentityOutput{
		Account: awssdk.String("123456789012"),
		Arn:     awssdk.String("arn:aws:iam::123456789012:user/ci"),
	}, nil)
	return WithProviderOptions(
		aws.WithAWSConfig(awssdk.Config{Region: "us-east-1"}),
		aws.WithSTSClient(stsClient),
	)
}

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestBuild_RegistersSinksAndNotifiers(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Report.Sinks = []string{"text", "json", "markdown", "s3"}
	cfg.Report.Markdown.Path = filepath.Join(t.TempDir(), "summary.md")
	cfg.Report.S3 = &s3.Config{Bucket: "reports"}
	cfg.Notify.GitHub = &github.Config{}
	cfg.Notify.SNS = &sns.Config{TopicARN: "arn:aws:sns:us-east-1:123456789012:cfn"}
	cfg.Drift.Enabled = true

	application, err := Build(context.Background(), cfg, log.NewNopLogger(),
		testProvider(t),
		WithGetenv(envOf(map[string]string{
			"GITHUB_TOKEN":      "ghs_token",
			"GITHUB_REPOSITORY": "acme/infra",
			"GITHUB_RUN_ID":     "42",
		})),
	)
	require.NoError(t, err)
	require.NotNil(t, application.Engine)

	var sinkTypes []string
	for _, sink := range application.Registry.DocumentSinks() {
		sinkTypes = append(sinkTypes, sink.Type())
	}
	assert.ElementsMatch(t, []string{"text", "json", "markdown", "s3"}, sinkTypes)

	var notifierTypes []string
	for _, n := range application.Registry.Notifiers() {
		notifierTypes = append(notifierTypes, n.Type())
	}
	assert.ElementsMatch(t, []string{github.NotifierTypeGitHub, sns.NotifierTypeSNS}, notifierTypes)
}

func TestBuild_SkipsGitHubOutsideActions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notify.GitHub = &github.Config{Token: "ghs_token"}

	application, err := Build(context.Background(), cfg, log.NewNopLogger(), testProvider(t), WithGetenv(envOf(nil)))
	require.NoError(t, err)
	assert.Empty(t, application.Registry.Notifiers())
}

func TestBuild_UnsupportedSink(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Report.Sinks = []string{"html"}

	_, err := Build(context.Background(), cfg, log.NewNopLogger(), testProvider(t))
	require.Error(t, err)
	assert.True(t, idderrors.Is(err, idderrors.CodeConfigValidation))
}

func TestBuildApplicationFromViper_StackOverride(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("targets.stacks", []any{map[string]any{"name": "Api", "template": "api.json"}})
	v.Set(StackOverrideKey, "Api=cdk.out/Api.template.json;Web=web.yaml")

	application, err := BuildApplicationFromViper(context.Background(), v, testProvider(t))
	require.NoError(t, err)

	assert.Equal(t, []config.StackTarget{
		{Name: "Api", Template: "cdk.out/Api.template.json"},
		{Name: "Web", Template: "web.yaml"},
	}, application.Config.Targets.Stacks)
}

func TestParseStackOverride(t *testing.T) {
	assert.Nil(t, parseStackOverride(""))
	assert.Nil(t, parseStackOverride("no-separator"))
	assert.Equal(t, []config.StackTarget{
		{Name: "A", Template: "a.json"},
		{Name: "B", Template: "b.yaml"},
	}, parseStackOverride(" B=b.yaml ; A=a.json"))
}
