package cloudformation

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	awserrors "github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/limiter"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/cfn-diff-reporter/internal/adapters/template"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
)

const serviceName = "cloudformation"

// Handler implements ports.StackReader and ports.DriftDetectionAPI over the
// CloudFormation API.
type Handler struct {
	client       CloudFormationClientInterface
	limiter      shared.RateLimiter
	errorHandler shared.ErrorHandler
	parser       ports.TemplateParser
	logger       ports.Logger
}

var (
	_ ports.StackReader       = (*Handler)(nil)
	_ ports.DriftDetectionAPI = (*Handler)(nil)
)

// HandlerOption defines a function signature for configuring the Handler.
type HandlerOption func(*Handler)

// WithCloudFormationClient provides an option to set a custom CloudFormation client.
func WithCloudFormationClient(client CloudFormationClientInterface) HandlerOption {
	return func(h *Handler) {
		if client != nil {
			h.client = client
		}
	}
}

// WithRateLimiter provides an option to set a shared rate limiter.
func WithRateLimiter(l shared.RateLimiter) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.limiter = l
		}
	}
}

// WithErrorHandler provides an option to set a custom error handler.
func WithErrorHandler(handler shared.ErrorHandler) HandlerOption {
	return func(h *Handler) {
		if handler != nil {
			h.errorHandler = handler
		}
	}
}

// WithTemplateParser sets the parser for deployed template bodies.
func WithTemplateParser(parser ports.TemplateParser) HandlerOption {
	return func(h *Handler) {
		if parser != nil {
			h.parser = parser
		}
	}
}

func NewHandler(cfg aws.Config, logger ports.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		logger: logger.WithFields(map[string]any{"component": "cloudformation"}),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.client == nil {
		h.client = cloudformation.NewFromConfig(cfg)
	}
	if h.limiter == nil {
		h.limiter = limiter.New(limiter.DefaultRPS, logger)
	}
	if h.errorHandler == nil {
		h.errorHandler = &awserrors.DefaultErrorHandler{}
	}
	if h.parser == nil {
		h.parser = template.NewParser(logger)
	}
	return h
}
