package template

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Parser struct {
	logger ports.Logger
}

var _ ports.TemplateParser = (*Parser)(nil)

func NewParser(logger ports.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseFile picks the format from the file extension: .json, .yml or .yaml.
func (p *Parser) ParseFile(ctx context.Context, path string) (*domain.Template, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yml" && ext != ".yaml" {
		return nil, errors.NewUserFacing(errors.CodeTemplateParseError,
			fmt.Sprintf("unsupported template file type %s", path),
			"Template files must end in .json, .yml or .yaml.")
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplateReadError, fmt.Sprintf("failed to read template %s", path))
	}
	p.logger.Debugf(ctx, "Parsing template %s (%d bytes)", path, len(body))

	var raw map[string]any
	if ext == ".json" {
		raw, err = decodeJSON(body)
	} else {
		raw, err = decodeYAML(body)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplateParseError, fmt.Sprintf("failed to parse template %s", path))
	}
	return toTemplate(raw)
}

// ParseBody parses a template of unknown format, trying JSON first.
func (p *Parser) ParseBody(body []byte) (*domain.Template, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if raw, err := decodeJSON(trimmed); err == nil {
			return toTemplate(raw)
		}
	}
	raw, err := decodeYAML(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplateParseError, "failed to parse template body")
	}
	return toTemplate(raw)
}

func decodeJSON(body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func toTemplate(raw map[string]any) (*domain.Template, error) {
	tmpl := &domain.Template{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           tmpl,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build template decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplateParseError, "template does not match the CloudFormation layout")
	}
	if tmpl.Resources == nil {
		tmpl.Resources = map[domain.ResourceKey]domain.TemplateResource{}
	}
	return tmpl, nil
}
