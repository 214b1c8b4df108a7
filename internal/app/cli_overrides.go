package app

import (
	"context"
	"strings"

	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/targets"
	"github.com/olusolaa/cfn-diff-reporter/internal/config"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
)

// StackOverrideKey is the viper key of the --stack flag.
const StackOverrideKey = "stack"

// parseStackOverride reads "Name=template;Other=template" pairs given on the
// command line. Malformed pairs are skipped.
func parseStackOverride(override string) []config.StackTarget {
	if strings.TrimSpace(override) == "" {
		return nil
	}
	pairs := targets.ParseStackPairs(override)
	if len(pairs) == 0 {
		return nil
	}
	return config.StackTargets(pairs)
}

// applyStackOverrides merges command line targets into the configured ones.
// A command line entry replaces the template of a configured stack with the
// same name, other entries are appended.
func applyStackOverrides(ctx context.Context, cfg *config.Config, override string, logger ports.Logger) {
	overrides := parseStackOverride(override)
	if overrides == nil {
		if override != "" {
			logger.Warnf(ctx, "Ignoring stack override without Name=template pairs: %q", override)
		}
		return
	}

	existing := make(map[string]int, len(cfg.Targets.Stacks))
	for i, s := range cfg.Targets.Stacks {
		existing[s.Name] = i
	}
	for _, o := range overrides {
		if index, ok := existing[o.Name]; ok {
			logger.Debugf(ctx, "Overriding template for stack '%s' with: %s", o.Name, o.Template)
			cfg.Targets.Stacks[index].Template = o.Template
			continue
		}
		logger.Debugf(ctx, "Adding stack '%s' from command line: %s", o.Name, o.Template)
		cfg.Targets.Stacks = append(cfg.Targets.Stacks, o)
	}
}
