package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the slice of the SNS client the publisher uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   SNSAPI
	topicARN string
}

func NewSNSPublisher(client SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (p *SNSPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.Type == "" || evt.ID == "" {
		return ErrInvalidEvent
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.Type, err)
	}

	attrs := map[string]types.MessageAttributeValue{
		"event_type": {
			DataType:    aws.String("String"),
			StringValue: aws.String(evt.Type),
		},
	}
	if cid := evt.Metadata["correlation_id"]; cid != "" {
		attrs["correlation_id"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(cid),
		}
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(p.topicARN),
		Message:           aws.String(string(body)),
		Subject:           aws.String(evt.Type),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("publish %s to sns: %w", evt.Type, err)
	}
	return nil
}
