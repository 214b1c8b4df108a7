package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/olusolaa/cfn-diff-reporter/internal/app"
	"github.com/olusolaa/cfn-diff-reporter/internal/config"
	apperrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cfn-diff",
	Short: "Reports CloudFormation template differences and stack drift.",
	Long: `cfn-diff compares the synthesized CloudFormation template of each target
stack with the template deployed in AWS, optionally runs drift detection, and
publishes a per-stack resource report to the terminal, files, S3, SNS or a
GitHub pull request.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		application, bootstrapErr := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
		if bootstrapErr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Application initialization failed: %v\n", bootstrapErr)
			if appErr := (*apperrors.AppError)(nil); errors.As(bootstrapErr, &appErr) {
				if appErr.IsUserFacing {
					fmt.Fprintf(os.Stderr, "Error Details: %s\n", appErr.Message)
					if appErr.SuggestedAction != "" {
						fmt.Fprintf(os.Stderr, "Suggestion: %s\n", appErr.SuggestedAction)
					}
				}
			}
			return bootstrapErr
		}

		if runErr := application.Run(cmd.Context()); runErr != nil {
			userMsg, suggestion, _ := apperrors.GetUserFacingMessage(runErr)
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
			if suggestion != "" {
				fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
			}
			return runErr
		}

		return nil
	},
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":        "settings.log_level",
	"log-format":       "settings.log_format",
	"concurrency":      "settings.concurrency",
	"stack":            app.StackOverrideKey,
	"cdk-out":          "targets.cdk_out_dir",
	"drift":            "drift.enabled",
	"region":           "platform.aws.region",
	"profile":          "platform.aws.profile",
	"role-arn":         "platform.aws.role_to_assume",
	"sinks":            "report.sinks",
	"no-color":         "report.text.no_color",
	"markdown-path":    "report.markdown.path",
	"metrics-textfile": "metrics.textfile_path",
}

func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is .cfn-diff.yaml in . or $HOME)")
	flags.String("log-level", "", "Override log level (debug, info, warn, error)")
	flags.String("log-format", "", "Override log format (text, json)")
	flags.Int("concurrency", 0, "Maximum number of stacks checked for drift at once")
	flags.String("stack", "", "Stacks to report with their templates (e.g. 'Api=cdk.out/Api.template.json;Web=web.yaml')")
	flags.String("cdk-out", "", "CDK output directory used when no stacks are listed")
	flags.Bool("drift", false, "Run drift detection on deployed stacks")
	flags.String("region", "", "AWS region")
	flags.String("profile", "", "AWS shared config profile")
	flags.String("role-arn", "", "IAM role to assume for all AWS calls")
	flags.StringSlice("sinks", nil, "Report sinks (text, json, markdown, s3)")
	flags.Bool("no-color", false, "Disable colored terminal output")
	flags.String("markdown-path", "", "Markdown report file (defaults to $GITHUB_STEP_SUMMARY)")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this file after the run")

	cobra.CheckErr(bindFlags(viper.GetViper(), flags))

	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("flag %q is not defined", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(config.ConfigFileName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using configuration file:", viper.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Fprintln(os.Stderr, "Config file not found, using defaults and environment variables.")
		} else {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "failed to read config file")
		}
	}

	return nil
}
