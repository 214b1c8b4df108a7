package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

// MockErrorWithCode implements the interface{ ErrorCode() string } for testing
type MockErrorWithCode struct {
	Code    string
	Message string
}

func (m *MockErrorWithCode) Error() string {
	return m.Message
}

func (m *MockErrorWithCode) ErrorCode() string {
	return m.Code
}

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestHandleAWSError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		ctx          context.Context
		expectedCode errors.Code
	}{
		{"nil error", nil, context.Background(), errors.CodeInternal},
		{"context canceled", fmt.Errorf("some error"), canceledContext(), errors.CodePlatformAPIError},
		{"direct context canceled", context.Canceled, context.Background(), errors.CodePlatformAPIError},
		{"wrapped deadline exceeded", fmt.Errorf("op: %w", context.DeadlineExceeded), context.Background(), errors.CodePlatformAPIError},
		{"access denied message", fmt.Errorf("AccessDenied: not allowed"), context.Background(), errors.CodePlatformAuthError},
		{"expired token code", &MockErrorWithCode{Code: "ExpiredToken", Message: "token expired"}, context.Background(), errors.CodePlatformAuthError},
		{"unrecognized client", &smithy.GenericAPIError{Code: "UnrecognizedClientException", Message: "bad key"}, context.Background(), errors.CodePlatformAuthError},
		{"throttling code", &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}, context.Background(), errors.CodePlatformThrottled},
		{"throttling wrapped", fmt.Errorf("operation error: %w", &smithy.GenericAPIError{Code: "ThrottlingException"}), context.Background(), errors.CodePlatformThrottled},
		{"missing stack", &smithy.GenericAPIError{Code: "ValidationError", Message: "Stack with id app does not exist"}, context.Background(), errors.CodeResourceNotFound},
		{"missing bucket", &MockErrorWithCode{Code: "NoSuchBucket", Message: "bucket"}, context.Background(), errors.CodeResourceNotFound},
		{"sns topic not found", &smithy.GenericAPIError{Code: "NotFound", Message: "Topic does not exist"}, context.Background(), errors.CodeResourceNotFound},
		{"other validation error", &smithy.GenericAPIError{Code: "ValidationError", Message: "Template format error"}, context.Background(), errors.CodePlatformAPIError},
		{"generic error", fmt.Errorf("connection reset by peer"), context.Background(), errors.CodePlatformAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleAWSError("cloudformation", "ListStacks", tt.err, tt.ctx)
			assert.Error(t, err)
			assert.Equal(t, tt.expectedCode, errors.GetCode(err))
		})
	}
}

func TestHandleAWSError_AuthIsUserFacing(t *testing.T) {
	err := HandleAWSError("sts", "AssumeRole", &smithy.GenericAPIError{Code: "AccessDenied"}, context.Background())
	msg, suggestion, ok := errors.GetUserFacingMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, "sts AssumeRole")
	assert.NotEmpty(t, suggestion)
}

func TestDefaultErrorHandler(t *testing.T) {
	h := &DefaultErrorHandler{}
	err := h.Handle("s3", "PutObject", &MockErrorWithCode{Code: "NoSuchKey"}, context.Background())
	assert.True(t, errors.Is(err, errors.CodeResourceNotFound))
}
