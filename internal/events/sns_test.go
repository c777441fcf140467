package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/smallbiznis/voltshop/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type snsMock struct {
	mock.Mock
}

func (m *snsMock) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestSNSPublisherSendsEnvelope(t *testing.T) {
	client := &snsMock{}
	client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		if aws.ToString(in.TopicArn) != "arn:aws:sns:us-east-1:123:orders" {
			return false
		}
		var evt Event
		if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &evt); err != nil {
			return false
		}
		return evt.Type == TypeOrderConfirmed &&
			aws.ToString(in.MessageAttributes["event_type"].StringValue) == TypeOrderConfirmed &&
			aws.ToString(in.MessageAttributes["correlation_id"].StringValue) == "cid-9"
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil)

	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-9")
	pub := NewSNSPublisher(client, "arn:aws:sns:us-east-1:123:orders")

	err := pub.Publish(ctx, New(ctx, TypeOrderConfirmed, "1001", map[string]any{"order_number": 1001}))
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSNSPublisherRejectsEmptyEvent(t *testing.T) {
	pub := NewSNSPublisher(&snsMock{}, "arn")
	assert.ErrorIs(t, pub.Publish(context.Background(), Event{}), ErrInvalidEvent)
}

func TestSNSPublisherWrapsErrors(t *testing.T) {
	client := &snsMock{}
	client.On("Publish", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	err := NewSNSPublisher(client, "arn").Publish(context.Background(), New(context.Background(), TypeCampaignCompleted, "c", nil))
	assert.ErrorIs(t, err, assert.AnError)
}
