package events

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/smallbiznis/voltshop/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
)

// NewPublisher publishes to SNS when a topic is configured and drops events otherwise.
func NewPublisher(cfg config.Config, log *zap.Logger) (Publisher, error) {
	log = log.Named("events")
	if cfg.Events.SNSTopicARN == "" {
		log.Info("event publishing disabled, no SNS topic configured")
		return NoopPublisher{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Events.AWSRegion))
	if err != nil {
		return nil, err
	}
	log.Info("publishing events to sns", zap.String("topic_arn", cfg.Events.SNSTopicARN))
	return NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.Events.SNSTopicARN), nil
}
