package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deusflow/footnews/internal/httpclient"
)

const (
	TypeRabbitMQ  = "rabbitmq"
	TypeAWSSNS    = "aws-sns"
	TypeAWSSQS    = "aws-sqs"
	TypeGCPPubSub = "gcp-pubsub"
	TypeHTTP      = "http"
)

// SinkConfig is one entry of the mirrors: list in the sources file.
type SinkConfig struct {
	ID       string          `yaml:"id"`
	Type     string          `yaml:"type"`
	Enabled  *bool           `yaml:"enabled"`
	RabbitMQ *RabbitMQConfig `yaml:"rabbitmq"`
	SNS      *SNSConfig      `yaml:"sns"`
	SQS      *SQSConfig      `yaml:"sqs"`
	PubSub   *PubSubConfig   `yaml:"pubsub"`
	HTTP     *HTTPConfig     `yaml:"http"`
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	Queue      string `yaml:"queue"`
}

type AWSCredentials struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type SNSConfig struct {
	TopicARN       string `yaml:"topic_arn"`
	AWSCredentials `yaml:",inline"`
}

type SQSConfig struct {
	QueueURL       string `yaml:"queue_url"`
	AWSCredentials `yaml:",inline"`
}

type PubSubConfig struct {
	ProjectID       string `yaml:"project_id"`
	Topic           string `yaml:"topic"`
	CredentialsFile string `yaml:"credentials_file"`
}

type HTTPConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// EnabledValue defaults to true.
func (c SinkConfig) EnabledValue() bool {
	return c.Enabled == nil || *c.Enabled
}

// Validate checks that the settings for the sink's type are present.
func (c SinkConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("id is required")
	}

	switch strings.ToLower(c.Type) {
	case TypeRabbitMQ:
		if c.RabbitMQ == nil || c.RabbitMQ.URL == "" || c.RabbitMQ.Exchange == "" {
			return fmt.Errorf("rabbitmq.url and rabbitmq.exchange are required for mirror %q", c.ID)
		}
	case TypeAWSSNS:
		if c.SNS == nil || c.SNS.TopicARN == "" || c.SNS.Region == "" {
			return fmt.Errorf("sns.topic_arn and sns.region are required for mirror %q", c.ID)
		}
	case TypeAWSSQS:
		if c.SQS == nil || c.SQS.QueueURL == "" || c.SQS.Region == "" {
			return fmt.Errorf("sqs.queue_url and sqs.region are required for mirror %q", c.ID)
		}
	case TypeGCPPubSub:
		if c.PubSub == nil || c.PubSub.ProjectID == "" || c.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for mirror %q", c.ID)
		}
	case TypeHTTP:
		if c.HTTP == nil || c.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for mirror %q", c.ID)
		}
	default:
		return fmt.Errorf("type %q not supported for mirror %q", c.Type, c.ID)
	}
	return nil
}

// Build connects every enabled sink. A sink that fails to connect is skipped with an error returned alongside the rest.
func Build(ctx context.Context, cfgs []SinkConfig, client httpclient.Client) ([]Sink, error) {
	var (
		sinks []Sink
		errs  []error
	)
	for _, c := range cfgs {
		if !c.EnabledValue() {
			continue
		}
		s, err := build(ctx, c, client)
		if err != nil {
			errs = append(errs, fmt.Errorf("mirror %q: %w", c.ID, err))
			continue
		}
		sinks = append(sinks, s)
	}
	return sinks, errors.Join(errs...)
}

func build(ctx context.Context, c SinkConfig, client httpclient.Client) (Sink, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(c.Type) {
	case TypeRabbitMQ:
		return NewRabbitMQ(c.ID, *c.RabbitMQ)
	case TypeAWSSNS:
		return NewSNS(ctx, c.ID, *c.SNS)
	case TypeAWSSQS:
		return NewSQS(ctx, c.ID, *c.SQS)
	case TypeGCPPubSub:
		return NewPubSub(ctx, c.ID, *c.PubSub)
	default:
		return NewHTTP(c.ID, *c.HTTP, client), nil
	}
}
