package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/footnews/internal/httpclient"
)

type recordingSink struct {
	name   string
	err    error
	events []PostEvent
	closed bool
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Send(_ context.Context, evt PostEvent) error {
	r.events = append(r.events, evt)
	return r.err
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestFanout_FailingSinkDoesNotStopOthers(t *testing.T) {
	broken := &recordingSink{name: "broken", err: errors.New("down")}
	ok := &recordingSink{name: "ok"}
	f := NewFanout(time.Second, broken, ok)

	f.Emit(context.Background(), PostEvent{Identity: "id-1", Kind: KindNews, Text: "hello"})

	require.Len(t, ok.events, 1)
	assert.Equal(t, "id-1", ok.events[0].Identity)
	assert.False(t, ok.events[0].PublishedAt.IsZero())
	assert.Len(t, broken.events, 1)

	require.NoError(t, f.Close())
	assert.True(t, ok.closed)
	assert.True(t, broken.closed)
}

func TestFanout_NilIsNoop(t *testing.T) {
	var f *Fanout
	f.Emit(context.Background(), PostEvent{Kind: KindNews})
	assert.Equal(t, 0, f.Len())
	assert.NoError(t, f.Close())
}

type fakeSNS struct{ input *sns.PublishInput }

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSQS struct{ input *sqs.SendMessageInput }

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSNSSink_Send(t *testing.T) {
	client := &fakeSNS{}
	s := &SNSSink{id: "sns", topicARN: "arn:aws:sns:eu-west-1:1:posts", client: client}

	require.NoError(t, s.Send(context.Background(), PostEvent{Identity: "x", Kind: KindGoal, Text: "GOAL"}))
	assert.Equal(t, "arn:aws:sns:eu-west-1:1:posts", aws.ToString(client.input.TopicArn))
	assert.Equal(t, KindGoal, aws.ToString(client.input.MessageAttributes["kind"].StringValue))

	var evt PostEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.Message)), &evt))
	assert.Equal(t, "GOAL", evt.Text)
}

func TestSQSSink_Send(t *testing.T) {
	client := &fakeSQS{}
	s := &SQSSink{id: "sqs", queueURL: "https://sqs.local/posts", client: client}

	require.NoError(t, s.Send(context.Background(), PostEvent{Identity: "x", Kind: KindNews, Text: "news"}))
	assert.Equal(t, "https://sqs.local/posts", aws.ToString(client.input.QueueUrl))
	assert.Contains(t, aws.ToString(client.input.MessageBody), `"kind":"news"`)
}

func TestHTTPSink_Send(t *testing.T) {
	var got PostEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewHTTP("hook", HTTPConfig{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer t"}},
		httpclient.NewRestyClient(5*time.Second, ""))

	require.NoError(t, s.Send(context.Background(), PostEvent{Identity: "id", Kind: KindLive, Text: "1-0"}))
	assert.Equal(t, "1-0", got.Text)
}

func TestHTTPSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTP("hook", HTTPConfig{URL: srv.URL}, httpclient.NewRestyClient(5*time.Second, ""))
	assert.Error(t, s.Send(context.Background(), PostEvent{Kind: KindNews}))
}

func TestSinkConfig_Validate(t *testing.T) {
	disabled := false
	tests := []struct {
		name    string
		cfg     SinkConfig
		wantErr bool
	}{
		{"http ok", SinkConfig{ID: "h", Type: TypeHTTP, HTTP: &HTTPConfig{URL: "http://x"}}, false},
		{"http missing url", SinkConfig{ID: "h", Type: TypeHTTP, HTTP: &HTTPConfig{}}, true},
		{"missing id", SinkConfig{Type: TypeHTTP, HTTP: &HTTPConfig{URL: "http://x"}}, true},
		{"sqs missing region", SinkConfig{ID: "q", Type: TypeAWSSQS, SQS: &SQSConfig{QueueURL: "u"}}, true},
		{"sns ok", SinkConfig{ID: "s", Type: TypeAWSSNS, SNS: &SNSConfig{TopicARN: "arn", AWSCredentials: AWSCredentials{Region: "eu-west-1"}}}, false},
		{"pubsub missing topic", SinkConfig{ID: "p", Type: TypeGCPPubSub, PubSub: &PubSubConfig{ProjectID: "p"}}, true},
		{"rabbit ok", SinkConfig{ID: "r", Type: TypeRabbitMQ, RabbitMQ: &RabbitMQConfig{URL: "amqp://x", Exchange: "posts"}}, false},
		{"unknown type", SinkConfig{ID: "k", Type: "kafka", Enabled: &disabled}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuild_SkipsDisabled(t *testing.T) {
	disabled := false
	sinks, err := Build(context.Background(), []SinkConfig{
		{ID: "off", Type: TypeRabbitMQ, Enabled: &disabled},
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPConfig{URL: "http://localhost/hook"}},
	}, httpclient.NewRestyClient(time.Second, ""))

	require.NoError(t, err)
	require.Len(t, sinks, 1)
	assert.Equal(t, "hook", sinks[0].Name())
}
