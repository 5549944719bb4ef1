// internal/common/aws/aws_test.go
package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	publishFunc func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.publishFunc(ctx, params)
}

type mockSES struct {
	sendEmailFunc func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.sendEmailFunc(ctx, params)
}

func TestSNSClient_SendSMS(t *testing.T) {
	var got *sns.PublishInput
	client := NewSNSClientWithAPI(&mockSNS{
		publishFunc: func(_ context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
			got = params
			return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
		},
	})

	id, err := client.SendSMS(context.Background(), "+93701234567", "approved", "LENDING")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	assert.Equal(t, "+93701234567", awssdk.ToString(got.PhoneNumber))
	assert.Equal(t, "approved", awssdk.ToString(got.Message))
	assert.Equal(t, "Transactional", awssdk.ToString(got.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
	assert.Equal(t, "LENDING", awssdk.ToString(got.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSNSClient_SendSMS_NoSenderID(t *testing.T) {
	client := NewSNSClientWithAPI(&mockSNS{
		publishFunc: func(_ context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
			_, ok := params.MessageAttributes["AWS.SNS.SMS.SenderID"]
			assert.False(t, ok)
			return &sns.PublishOutput{}, nil
		},
	})

	id, err := client.SendSMS(context.Background(), "+93701234567", "hi", "")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSNSClient_SendSMS_Error(t *testing.T) {
	client := NewSNSClientWithAPI(&mockSNS{
		publishFunc: func(context.Context, *sns.PublishInput) (*sns.PublishOutput, error) {
			return nil, errors.New("throttled")
		},
	})

	_, err := client.SendSMS(context.Background(), "+93701234567", "hi", "")
	assert.ErrorContains(t, err, "throttled")
}

func TestSESClient_SendEmail(t *testing.T) {
	var got *ses.SendEmailInput
	client := NewSESClientWithAPI(&mockSES{
		sendEmailFunc: func(_ context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
			got = params
			return &ses.SendEmailOutput{MessageId: awssdk.String("ses-1")}, nil
		},
	})

	id, err := client.SendEmail(context.Background(), Email{
		From:    "loans@example.af",
		To:      "farida@example.af",
		Subject: "Decision",
		Text:    "approved",
	})
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
	assert.Equal(t, "loans@example.af", awssdk.ToString(got.Source))
	assert.Equal(t, []string{"farida@example.af"}, got.Destination.ToAddresses)
	assert.Equal(t, "Decision", awssdk.ToString(got.Message.Subject.Data))
	assert.Equal(t, "approved", awssdk.ToString(got.Message.Body.Text.Data))
	assert.Nil(t, got.Message.Body.Html)
}

func TestSESClient_SendEmail_Error(t *testing.T) {
	client := NewSESClientWithAPI(&mockSES{
		sendEmailFunc: func(context.Context, *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected")
		},
	})

	_, err := client.SendEmail(context.Background(), Email{From: "a@b.af", To: "c@d.af"})
	assert.ErrorContains(t, err, "MessageRejected")
}
