package notification

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// SNSPublisher is the part of the SNS client used for SMS.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSSender struct {
	client   SNSPublisher
	senderID string
}

func NewSNSSender(client SNSPublisher, senderID string) *SNSSender {
	return &SNSSender{client: client, senderID: senderID}
}

// NewSNSSenderFromRegion loads the default AWS credential chain for region.
func NewSNSSenderFromRegion(ctx context.Context, region, senderID string) (*SNSSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewSNSSender(sns.NewFromConfig(cfg), senderID), nil
}

func (s *SNSSender) Send(ctx context.Context, phone, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}
	if s.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("failed to publish sms: %w", err)
	}
	return nil
}

// StubSender accepts every message without delivering it.
type StubSender struct {
	logger *zap.Logger
}

func NewStubSender(logger *zap.Logger) *StubSender {
	return &StubSender{logger: logger}
}

func (s *StubSender) Send(_ context.Context, phone, message string) error {
	s.logger.Info("sms accepted by stub sender", zap.String("phone", phone), zap.Int("length", len(message)))
	return nil
}
