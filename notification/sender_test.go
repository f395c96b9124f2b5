package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSNS struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestSNSSender_Send(t *testing.T) {
	var captured *sns.PublishInput
	client := &mockSNS{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
		},
	}

	sender := NewSNSSender(client, "SHEAR")
	require.NoError(t, sender.Send(context.Background(), "+254700000001", "hello"))

	require.NotNil(t, captured)
	assert.Equal(t, "+254700000001", aws.ToString(captured.PhoneNumber))
	assert.Equal(t, "hello", aws.ToString(captured.Message))
	assert.Equal(t, "SHEAR", aws.ToString(captured.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSNSSender_SendWithoutSenderID(t *testing.T) {
	var captured *sns.PublishInput
	client := &mockSNS{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{}, nil
		},
	}

	require.NoError(t, NewSNSSender(client, "").Send(context.Background(), "+254700000001", "hi"))
	_, ok := captured.MessageAttributes["AWS.SNS.SMS.SenderID"]
	assert.False(t, ok)
}

func TestSNSSender_SendError(t *testing.T) {
	client := &mockSNS{
		PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	err := NewSNSSender(client, "").Send(context.Background(), "+254700000001", "hi")
	assert.ErrorContains(t, err, "throttled")
}

func TestStubSender_AlwaysSucceeds(t *testing.T) {
	assert.NoError(t, NewStubSender(zap.NewNop()).Send(context.Background(), "+254700000001", "hi"))
}
