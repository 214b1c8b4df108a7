package config

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/targets"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const (
	EnvPrefix      = "CFN_DIFF"
	ConfigFileName = ".cfn-diff"
)

// SetDefaults registers every leaf key so environment variables such as
// CFN_DIFF_DRIFT_ENABLED are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("settings.log_level", string(d.Settings.LogLevel))
	v.SetDefault("settings.log_format", string(d.Settings.LogFormat))
	v.SetDefault("settings.concurrency", d.Settings.Concurrency)
	v.SetDefault("targets.stacks", []any{})
	v.SetDefault("targets.cdk_out_dir", d.Targets.CDKOutDir)
	v.SetDefault("drift.enabled", d.Drift.Enabled)
	v.SetDefault("drift.delay_ms", d.Drift.DelayMS)
	v.SetDefault("drift.max_attempts", d.Drift.MaxAttempts)
	v.SetDefault("drift.timeout_ms", d.Drift.TimeoutMS)
	v.SetDefault("platform.aws.region", "")
	v.SetDefault("platform.aws.profile", "")
	v.SetDefault("platform.aws.role_to_assume", "")
	v.SetDefault("platform.aws.api_rps", 0)
	v.SetDefault("report.sinks", d.Report.Sinks)
	v.SetDefault("report.text.no_color", false)
	v.SetDefault("report.json.path", "")
	v.SetDefault("report.json.pretty", false)
	v.SetDefault("report.markdown.path", "")
	v.SetDefault("metrics.textfile_path", "")
}

// Load unmarshals and validates the configuration held by v.
func Load(ctx context.Context, v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stackPairsHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeConfigParseError, "failed to unmarshal configuration",
			"Please check the types of the values in your configuration file or environment.")
	}
	for i, s := range cfg.Report.Sinks {
		cfg.Report.Sinks[i] = strings.ToLower(strings.TrimSpace(s))
	}

	if err := Validate(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and the rules spanning several sections.
func Validate(ctx context.Context, cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.StructCtx(ctx, cfg)

	var errorDetails strings.Builder
	var validationErrors validator.ValidationErrors
	if err != nil {
		var ok bool
		if validationErrors, ok = err.(validator.ValidationErrors); !ok {
			return errors.Wrap(err, errors.CodeConfigValidation, "configuration validation failed")
		}
	}
	for _, fe := range validationErrors {
		errorDetails.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	if cfg.Report.HasSink("s3") && cfg.Report.S3 == nil {
		errorDetails.WriteString("\n - Field 'Config.Report.S3': required when the s3 sink is enabled")
	}

	if errorDetails.Len() == 0 {
		return nil
	}
	return errors.NewUserFacing(errors.CodeConfigValidation, "Configuration validation failed:"+errorDetails.String(),
		"Please check your configuration file or flags.")
}

// stackPairsHook accepts "name=path;name=path" wherever a stack list is
// expected, which is how targets arrive from flags and environment.
func stackPairsHook() mapstructure.DecodeHookFuncType {
	listType := reflect.TypeOf([]StackTarget{})
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != listType {
			return data, nil
		}
		return StackTargets(targets.ParseStackPairs(reflect.ValueOf(data).String())), nil
	}
}

// StackTargets converts parsed pairs into a list sorted by name.
func StackTargets(pairs map[string]string) []StackTarget {
	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]StackTarget, 0, len(names))
	for _, name := range names {
		out = append(out, StackTarget{Name: name, Template: pairs[name]})
	}
	return out
}
