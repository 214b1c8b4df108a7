package cloudformation

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	idderrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

// GetTemplate fetches and parses the template the stack was last deployed
// with.
func (h *Handler) GetTemplate(ctx context.Context, stackName string) (*domain.Template, error) {
	if err := h.limiter.Wait(ctx, h.logger); err != nil {
		return nil, h.errorHandler.Handle(serviceName, "GetTemplate", err, ctx)
	}
	out, err := h.client.GetTemplate(ctx, &cloudformation.GetTemplateInput{StackName: aws.String(stackName)})
	if err != nil {
		return nil, h.errorHandler.Handle(serviceName, "GetTemplate "+stackName, err, ctx)
	}

	body := aws.ToString(out.TemplateBody)
	if body == "" {
		return &domain.Template{Resources: map[domain.ResourceKey]domain.TemplateResource{}}, nil
	}
	tmpl, err := h.parser.ParseBody([]byte(body))
	if err != nil {
		return nil, idderrors.Wrap(err, idderrors.CodeTemplateParseError, "failed to parse deployed template of stack "+stackName)
	}
	return tmpl, nil
}

// ListStackResources returns the live resources of a stack, following
// pagination.
func (h *Handler) ListStackResources(ctx context.Context, stackName string) ([]domain.ResourceRecord, error) {
	paginator := cloudformation.NewListStackResourcesPaginator(h.client, &cloudformation.ListStackResourcesInput{
		StackName: aws.String(stackName),
	})

	var records []domain.ResourceRecord
	for paginator.HasMorePages() {
		if err := h.limiter.Wait(ctx, h.logger); err != nil {
			return nil, h.errorHandler.Handle(serviceName, "ListStackResources", err, ctx)
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, h.errorHandler.Handle(serviceName, "ListStackResources "+stackName, err, ctx)
		}
		for _, summary := range page.StackResourceSummaries {
			records = append(records, toResourceRecord(summary))
		}
	}

	h.logger.Debugf(ctx, "Listed %d resources of stack %s", len(records), stackName)
	return records, nil
}
