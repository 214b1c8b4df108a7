package cloudformation

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
)

func stackStatusFilter() []cfntypes.StackStatus {
	filter := make([]cfntypes.StackStatus, 0, len(domain.StableStackStatuses))
	for _, s := range domain.StableStackStatuses {
		filter = append(filter, cfntypes.StackStatus(s))
	}
	return filter
}

// ListStacks returns every stable stack accepted by predicate, in the order
// the API returned them. Pages are requested one after another because each
// request needs the previous token.
func (h *Handler) ListStacks(ctx context.Context, predicate ports.StackPredicate) ([]domain.StackIdentity, error) {
	var (
		stacks    []domain.StackIdentity
		nextToken *string
		pages     int
	)
	for {
		if err := h.limiter.Wait(ctx, h.logger); err != nil {
			return nil, h.errorHandler.Handle(serviceName, "ListStacks", err, ctx)
		}
		out, err := h.client.ListStacks(ctx, &cloudformation.ListStacksInput{
			NextToken:         nextToken,
			StackStatusFilter: stackStatusFilter(),
		})
		if err != nil {
			return nil, h.errorHandler.Handle(serviceName, "ListStacks", err, ctx)
		}
		pages++

		for _, summary := range out.StackSummaries {
			stack := toStackIdentity(summary)
			// The server-side filter is not trusted on its own.
			if !domain.IsStableStackStatus(stack.Status) {
				continue
			}
			if predicate != nil && !predicate(stack) {
				continue
			}
			stacks = append(stacks, stack)
		}

		if aws.ToString(out.NextToken) == "" {
			break
		}
		nextToken = out.NextToken
	}

	h.logger.Debugf(ctx, "Listed %d matching stacks across %d pages", len(stacks), pages)
	return stacks, nil
}
