package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

var (
	authErrorCodes = []string{
		"AccessDenied",
		"AccessDeniedException",
		"AuthFailure",
		"ExpiredToken",
		"ExpiredTokenException",
		"InvalidClientTokenId",
		"SignatureDoesNotMatch",
		"UnauthorizedOperation",
		"UnrecognizedClientException",
	}

	throttlingErrorCodes = []string{
		"Throttling",
		"ThrottlingException",
		"ThrottledException",
		"RequestLimitExceeded",
		"TooManyRequestsException",
		"SlowDown",
	}

	notFoundErrorCodes = []string{
		// S3
		"NoSuchBucket",
		"NoSuchKey",
		// SNS
		"NotFound",
		// Generic
		"ResourceNotFoundException",
		"NotFoundException",
		"StackNotFoundException",
	}
)

// HandleAWSError maps an SDK error to an application error code.
// service: the AWS service (e.g. "cloudformation", "s3")
// operation: the API operation and its subject
// err: the original AWS error
// ctx: the context, to check for cancellation
func HandleAWSError(service string, operation string, err error, ctx context.Context) error {
	if err == nil {
		return errors.New(errors.CodeInternal, fmt.Sprintf("unexpected nil error in AWS error handler for %s", service))
	}

	if ctx.Err() != nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.CodePlatformAPIError,
			fmt.Sprintf("context canceled during AWS %s %s call", service, operation))
	}

	code := errorCode(err)
	errMsg := err.Error()

	switch {
	case slices.Contains(authErrorCodes, code) || containsAny(errMsg, "AuthFailure", "UnauthorizedOperation", "AccessDenied", "ExpiredToken"):
		return errors.WrapUserFacing(err, errors.CodePlatformAuthError,
			fmt.Sprintf("AWS authentication error during %s %s", service, operation),
			"Check the AWS credentials of the run and the permissions of the assumed role.")
	case slices.Contains(throttlingErrorCodes, code) || containsAny(errMsg, "Rate exceeded", "Throttling"):
		return errors.Wrap(err, errors.CodePlatformThrottled,
			fmt.Sprintf("AWS %s throttled %s", service, operation))
	case isNotFound(code, errMsg):
		return errors.Wrap(err, errors.CodeResourceNotFound,
			fmt.Sprintf("%s %s: resource not found", service, operation))
	}

	return errors.Wrap(err, errors.CodePlatformAPIError,
		fmt.Sprintf("AWS %s %s failed", service, operation))
}

func errorCode(err error) string {
	// Test doubles often only implement ErrorCode.
	if coded, ok := err.(interface{ ErrorCode() string }); ok {
		return coded.ErrorCode()
	}
	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) && apiErr != nil {
		return apiErr.ErrorCode()
	}
	return ""
}

// isNotFound also covers CloudFormation, which reports missing stacks as a
// ValidationError "Stack with id X does not exist".
func isNotFound(code, errMsg string) bool {
	if slices.Contains(notFoundErrorCodes, code) {
		return true
	}
	return containsAny(errMsg, "does not exist", "NoSuchKey", "NoSuchBucket", "not found")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DefaultErrorHandler implements the shared aws.ErrorHandler interface.
type DefaultErrorHandler struct{}

func (d *DefaultErrorHandler) Handle(service, operation string, err error, ctx context.Context) error {
	return HandleAWSError(service, operation, err, ctx)
}
