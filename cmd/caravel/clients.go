package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/yairfalse/caravel/config"
)

// awsClients bundles the control-plane collaborators.
type awsClients struct {
	dynamo  *dynamodb.Client
	s3      *s3.Client
	sns     *sns.Client
	sqs     *sqs.Client
	secrets *secretsmanager.Client
}

// newAWSClients loads the default AWS config and builds the service
// clients the pipeline persists through.
func newAWSClients(ctx context.Context, cfg *config.Config) (*awsClients, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &awsClients{
		dynamo:  dynamodb.NewFromConfig(awsCfg),
		s3:      s3.NewFromConfig(awsCfg),
		sns:     sns.NewFromConfig(awsCfg),
		sqs:     sqs.NewFromConfig(awsCfg),
		secrets: secretsmanager.NewFromConfig(awsCfg),
	}, nil
}
