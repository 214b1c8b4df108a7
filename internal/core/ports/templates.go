package ports

import (
	"context"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
)

// TargetResolver maps stack names to template file paths.
type TargetResolver interface {
	ResolveTargets(ctx context.Context) (map[string]string, error)
}

type TemplateParser interface {
	ParseFile(ctx context.Context, path string) (*domain.Template, error)
	ParseBody(body []byte) (*domain.Template, error)
}
