package sns

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClientInterface defines the methods needed from the AWS SDK SNS client.
type SNSClientInterface interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}
