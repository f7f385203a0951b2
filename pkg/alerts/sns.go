package alerts

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/caresignal/accredwatch/pkg/model"
)

// SNSConfig holds the settings for the SNS alert sink. Topics maps each
// tier to a topic ARN; any tier missing from the map falls back to
// TopicARNPrefix completed with the lowercase tier name.
type SNSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	TopicARNPrefix  string
	Topics          map[model.Priority]string
}

// SNSSink publishes tier alerts to per-tier SNS topics.
type SNSSink struct {
	client *sns.Client
	cfg    SNSConfig
}

// NewSNSSink builds an SNS sink from config.
func NewSNSSink(ctx context.Context, cfg SNSConfig) (*SNSSink, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &SNSSink{
		client: sns.NewFromConfig(sdkConfig),
		cfg:    cfg,
	}, nil
}

func (s *SNSSink) Name() string { return "sns" }

// Publish sends one tier alert to the tier's topic.
func (s *SNSSink) Publish(ctx context.Context, tier model.Priority, subject, body string) error {
	topicARN, err := s.topicFor(tier)
	if err != nil {
		return err
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topicARN, err)
	}
	return nil
}

func (s *SNSSink) topicFor(tier model.Priority) (string, error) {
	if arn, ok := s.cfg.Topics[tier]; ok && arn != "" {
		return arn, nil
	}
	if s.cfg.TopicARNPrefix != "" {
		return s.cfg.TopicARNPrefix + "-" + strings.ToLower(string(tier)), nil
	}
	return "", fmt.Errorf("no SNS topic configured for tier %s", tier)
}
