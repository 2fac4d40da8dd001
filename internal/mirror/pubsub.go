package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type PubSubSink struct {
	id     string
	client *pubsub.Client
	topic  *pubsub.Topic
}

func NewPubSub(ctx context.Context, id string, c PubSubConfig) (*PubSubSink, error) {
	var opts []option.ClientOption
	if c.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, c.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &PubSubSink{id: id, client: client, topic: client.Topic(c.Topic)}, nil
}

func (s *PubSubSink) Name() string { return s.id }

func (s *PubSubSink) Send(ctx context.Context, evt PostEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	res := s.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"kind": evt.Kind},
	})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("send message to pubsub: %w", err)
	}
	return nil
}

func (s *PubSubSink) Close() error {
	s.topic.Stop()
	return s.client.Close()
}
