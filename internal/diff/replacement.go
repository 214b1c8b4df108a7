package diff

import (
	"slices"
	"strings"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
)

// replacementProperties are properties whose update forces CloudFormation to
// create a new physical resource.
var replacementProperties = map[string][]string{
	"AWS::S3::Bucket":                  {"BucketName"},
	"AWS::SQS::Queue":                  {"QueueName", "FifoQueue"},
	"AWS::SNS::Topic":                  {"TopicName", "FifoTopic"},
	"AWS::DynamoDB::Table":             {"TableName", "KeySchema"},
	"AWS::Lambda::Function":            {"FunctionName", "PackageType"},
	"AWS::IAM::Role":                   {"RoleName", "Path"},
	"AWS::IAM::User":                   {"UserName"},
	"AWS::IAM::ManagedPolicy":          {"ManagedPolicyName", "Path"},
	"AWS::EC2::SecurityGroup":          {"GroupName", "GroupDescription", "VpcId"},
	"AWS::EC2::Instance":               {"ImageId", "AvailabilityZone", "SubnetId", "KeyName"},
	"AWS::EC2::VPC":                    {"CidrBlock"},
	"AWS::EC2::Subnet":                 {"VpcId", "CidrBlock", "AvailabilityZone"},
	"AWS::RDS::DBInstance":             {"DBInstanceIdentifier", "DBName", "KmsKeyId", "StorageEncrypted", "DBSubnetGroupName"},
	"AWS::RDS::DBCluster":              {"DBClusterIdentifier", "DatabaseName", "Engine", "KmsKeyId", "StorageEncrypted"},
	"AWS::Logs::LogGroup":              {"LogGroupName"},
	"AWS::ECR::Repository":             {"RepositoryName"},
	"AWS::ECS::Cluster":                {"ClusterName"},
	"AWS::ECS::Service":                {"ServiceName", "Cluster", "LaunchType"},
	"AWS::Kinesis::Stream":             {"Name"},
	"AWS::KMS::Alias":                  {"AliasName"},
	"AWS::SecretsManager::Secret":      {"Name"},
	"AWS::StepFunctions::StateMachine": {"StateMachineName", "StateMachineType"},
	"AWS::Events::Rule":                {"Name", "EventBusName"},
}

// conditionalReplacementProperties may or may not force a replacement
// depending on the new value.
var conditionalReplacementProperties = map[string][]string{
	"AWS::RDS::DBInstance":           {"Engine", "DBSnapshotIdentifier", "AvailabilityZone"},
	"AWS::EC2::Instance":             {"InstanceType", "UserData", "Tenancy"},
	"AWS::ElastiCache::CacheCluster": {"CacheNodeType", "Engine"},
	"AWS::Lambda::Function":          {"Architectures"},
}

func impactOf(resourceType, property string, newValue any) domain.ChangeClassification {
	if slices.Contains(replacementProperties[resourceType], property) {
		// An unresolved reference may end up with the same value after deploy.
		if hasIntrinsic(newValue) {
			return domain.ChangeMayReplace
		}
		return domain.ChangeReplace
	}
	if slices.Contains(conditionalReplacementProperties[resourceType], property) {
		return domain.ChangeMayReplace
	}
	return domain.ChangeUpdate
}

// hasIntrinsic reports whether v holds a Ref or Fn:: function anywhere.
func hasIntrinsic(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if k == "Ref" || strings.HasPrefix(k, "Fn::") {
				return true
			}
			if hasIntrinsic(inner) {
				return true
			}
		}
	case []any:
		for _, inner := range t {
			if hasIntrinsic(inner) {
				return true
			}
		}
	}
	return false
}
