package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// snsClient is the subset of the SNS client the sink uses.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// sqsClient is the subset of the SQS client the sink uses.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// loadAWSConfig uses static keys when given, otherwise the default credential chain.
func loadAWSConfig(ctx context.Context, c AWSCredentials) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(c.Region)}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")
		opts = append(opts, awscfg.WithCredentialsProvider(creds))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

type SNSSink struct {
	id       string
	topicARN string
	client   snsClient
}

func NewSNS(ctx context.Context, id string, c SNSConfig) (*SNSSink, error) {
	cfg, err := loadAWSConfig(ctx, c.AWSCredentials)
	if err != nil {
		return nil, err
	}
	return &SNSSink{id: id, topicARN: c.TopicARN, client: sns.NewFromConfig(cfg)}, nil
}

func (s *SNSSink) Name() string { return s.id }

func (s *SNSSink) Send(ctx context.Context, evt PostEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(evt.Kind),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send message to sns: %w", err)
	}
	return nil
}

func (s *SNSSink) Close() error { return nil }

type SQSSink struct {
	id       string
	queueURL string
	client   sqsClient
}

func NewSQS(ctx context.Context, id string, c SQSConfig) (*SQSSink, error) {
	cfg, err := loadAWSConfig(ctx, c.AWSCredentials)
	if err != nil {
		return nil, err
	}
	return &SQSSink{id: id, queueURL: c.QueueURL, client: sqs.NewFromConfig(cfg)}, nil
}

func (s *SQSSink) Name() string { return s.id }

func (s *SQSSink) Send(ctx context.Context, evt PostEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(payload)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(evt.Kind),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send message to sqs: %w", err)
	}
	return nil
}

func (s *SQSSink) Close() error { return nil }
