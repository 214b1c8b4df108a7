package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeNotImplemented   Code = "NOT_IMPLEMENTED"
	CodeTimeout          Code = "TIMEOUT_ERROR"

	// Target and template handling
	CodeTargetResolution   Code = "TARGET_RESOLUTION_ERROR"
	CodeTemplateReadError  Code = "TEMPLATE_READ_ERROR"
	CodeTemplateParseError Code = "TEMPLATE_PARSE_ERROR"
	CodeDiffError          Code = "DIFF_ERROR"

	// Platform (CloudFormation, STS, S3, SNS)
	CodePlatformAPIError  Code = "PLATFORM_API_ERROR"
	CodePlatformAuthError Code = "PLATFORM_AUTH_ERROR"
	CodePlatformThrottled Code = "PLATFORM_THROTTLED"
	CodeResourceNotFound  Code = "RESOURCE_NOT_FOUND"

	// Report delivery
	CodePublishError Code = "PUBLISH_ERROR"
	CodeNotifyError  Code = "NOTIFY_ERROR"
)

func (c Code) String() string {
	return string(c)
}
