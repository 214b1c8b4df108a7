package targets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const (
	manifestFile      = "manifest.json"
	stackArtifactType = "aws:cloudformation:stack"
	DefaultCDKOutDir  = "cdk.out"
	pairSeparator     = ";"
	keyValueSeparator = "="
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type manifest struct {
	Artifacts map[string]artifact `json:"artifacts"`
}

type artifact struct {
	Type       string `json:"type"`
	Properties struct {
		TemplateFile string `json:"templateFile"`
	} `json:"properties"`
}

// Resolver maps stack names to template files. Explicit stacks win; the CDK
// cloud assembly is only read when none are configured.
type Resolver struct {
	stacks    map[string]string
	cdkOutDir string
	logger    ports.Logger
}

var _ ports.TargetResolver = (*Resolver)(nil)

func NewResolver(stacks map[string]string, cdkOutDir string, logger ports.Logger) *Resolver {
	if cdkOutDir == "" {
		cdkOutDir = DefaultCDKOutDir
	}
	return &Resolver{
		stacks:    stacks,
		cdkOutDir: cdkOutDir,
		logger:    logger.WithFields(map[string]any{"component": "targets"}),
	}
}

func (r *Resolver) ResolveTargets(ctx context.Context) (map[string]string, error) {
	if len(r.stacks) > 0 {
		targets := r.accessible(ctx, r.stacks)
		if len(targets) > 0 {
			r.logger.Debugf(ctx, "Loaded %d configured targets", len(targets))
			return targets, nil
		}
		r.logger.Debugf(ctx, "None of the %d configured templates is accessible", len(r.stacks))
	}

	info, err := os.Stat(r.cdkOutDir)
	if err != nil || !info.IsDir() {
		r.logger.Debugf(ctx, "No cloud assembly directory at %s", r.cdkOutDir)
		return map[string]string{}, nil
	}
	found, err := r.fromManifest(r.cdkOutDir)
	if err != nil {
		return nil, err
	}
	targets := r.accessible(ctx, found)
	r.logger.Debugf(ctx, "Detected %d targets in %s", len(targets), r.cdkOutDir)
	return targets, nil
}

func (r *Resolver) fromManifest(dir string) (map[string]string, error) {
	path := filepath.Join(dir, manifestFile)
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTargetResolution, fmt.Sprintf("failed to read %s", path))
	}
	var m manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, errors.Wrap(err, errors.CodeTargetResolution, fmt.Sprintf("failed to parse %s", path))
	}

	out := make(map[string]string)
	for name, a := range m.Artifacts {
		if a.Type != stackArtifactType || a.Properties.TemplateFile == "" {
			continue
		}
		out[name] = filepath.Join(dir, a.Properties.TemplateFile)
	}
	return out, nil
}

// accessible drops targets whose template is not a readable regular file.
func (r *Resolver) accessible(ctx context.Context, candidates map[string]string) map[string]string {
	out := make(map[string]string, len(candidates))
	for name, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			r.logger.Debugf(ctx, "Cannot access template %s of stack %s, skipping", path, name)
			continue
		}
		out[name] = path
	}
	return out
}

// ParseStackPairs parses "name=path" pairs separated by ';' or newlines.
// Surrounding whitespace is ignored and lines without '=' are skipped.
func ParseStackPairs(s string) map[string]string {
	out := make(map[string]string)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || string(r) == pairSeparator
	})
	for _, field := range fields {
		name, path, ok := strings.Cut(field, keyValueSeparator)
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			continue
		}
		out[name] = path
	}
	return out
}
