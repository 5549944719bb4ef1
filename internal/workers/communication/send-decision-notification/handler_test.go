// internal/workers/communication/send-decision-notification/handler_test.go
package senddecisionnotification

import (
	"context"
	stderrors "errors"
	"testing"

	"lending-workers/internal/assessment"
	"lending-workers/internal/common/aws"
	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/validation"
	"lending-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockSMS struct {
	sendFunc func(ctx context.Context, phone, message, senderID string) (string, error)
	messages []string
}

func (m *mockSMS) SendSMS(ctx context.Context, phone, message, senderID string) (string, error) {
	m.messages = append(m.messages, message)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, phone, message, senderID)
	}
	return "sms-1", nil
}

type mockEmail struct {
	sendFunc func(ctx context.Context, e aws.Email) (string, error)
	emails   []aws.Email
}

func (m *mockEmail) SendEmail(ctx context.Context, e aws.Email) (string, error) {
	m.emails = append(m.emails, e)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, e)
	}
	return "email-1", nil
}

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.SMSEnabled = true
	cfg.EmailEnabled = true
	cfg.FromEmail = "loans@example.af"
	cfg.SenderID = "LENDING"
	return cfg
}

func approvedInput() *Input {
	return &Input{
		AssessmentID:  "a-1",
		ApplicantName: "Farida",
		Phone:         "+93701234567",
		Email:         "farida@example.af",
		Purpose:       "Healthcare",
		Assessment: assessment.Result{
			Approved:          true,
			ViabilityScore:    115,
			RiskLevel:         assessment.RiskLow,
			InterestRate:      8,
			MaxApprovedAmount: 28,
			RepaymentPeriod:   90,
			AssessmentFactors: []string{"Strong community network reduces default risk significantly"},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Approved(t *testing.T) {
	sms, email := &mockSMS{}, &mockEmail{}
	h := NewHandler(createTestConfig(), sms, email, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), approvedInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, []Delivery{
		{Channel: ChannelSMS, MessageID: "sms-1"},
		{Channel: ChannelEmail, MessageID: "email-1"},
	}, out.Deliveries)
	assert.NotEmpty(t, out.NotificationID)

	require.Len(t, sms.messages, 1)
	assert.Equal(t, "Farida, your Healthcare loan is approved: up to 28.00 AFN at 8.0% over 90 days.", sms.messages[0])

	require.Len(t, email.emails, 1)
	sent := email.emails[0]
	assert.Equal(t, "loans@example.af", sent.From)
	assert.Equal(t, "farida@example.af", sent.To)
	assert.Equal(t, "Your loan application is approved", sent.Subject)
	assert.Contains(t, sent.Text, "Interest rate: 8.0%")
	assert.Contains(t, sent.Text, "- Strong community network reduces default risk significantly")
}

func TestHandler_Execute_Declined(t *testing.T) {
	sms, email := &mockSMS{}, &mockEmail{}
	h := NewHandler(createTestConfig(), sms, email, nil, logger.NewTestLogger(t))

	input := &Input{
		Phone: "+93701234567",
		Assessment: assessment.Result{
			ViabilityScore: 17,
			RiskLevel:      assessment.RiskHigh,
		},
	}
	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	require.Len(t, out.Deliveries, 1)
	assert.Empty(t, email.emails)
	assert.Equal(t, "Applicant, your business loan was not approved this time (score 17). More community guarantors can help.", sms.messages[0])
}

func TestHandler_Execute_ChannelsDisabled(t *testing.T) {
	sms, email := &mockSMS{}, &mockEmail{}
	h := NewHandler(LoadConfig(), sms, email, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), approvedInput())
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, out.Status)
	assert.Empty(t, out.Deliveries)
	assert.Empty(t, sms.messages)
	assert.Empty(t, email.emails)
}

func TestHandler_Execute_NilSenders(t *testing.T) {
	h := NewHandler(createTestConfig(), nil, nil, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), approvedInput())
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *Input)
	}{
		{name: "no channel", modify: func(in *Input) { in.Phone, in.Email = "", "" }},
		{name: "local phone format", modify: func(in *Input) { in.Phone = "0701234567" }},
		{name: "bad email", modify: func(in *Input) { in.Email = "farida@" }},
		{name: "unknown risk level", modify: func(in *Input) { in.Assessment.RiskLevel = "severe" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sms := &mockSMS{}
			h := NewHandler(createTestConfig(), sms, &mockEmail{}, nil, logger.NewTestLogger(t))

			input := approvedInput()
			tt.modify(input)

			_, err := h.Execute(context.Background(), input)
			require.Error(t, err)

			stdErr := errors.Normalize(err)
			assert.Equal(t, errors.ErrCodeNotificationValidationFailed, stdErr.Code)
			assert.False(t, stdErr.Retryable)
			assert.Empty(t, sms.messages)
		})
	}
}

func TestHandler_Execute_SendFailures(t *testing.T) {
	t.Run("sms failure", func(t *testing.T) {
		sms := &mockSMS{sendFunc: func(context.Context, string, string, string) (string, error) {
			return "", stderrors.New("throttled")
		}}
		email := &mockEmail{}
		h := NewHandler(createTestConfig(), sms, email, nil, logger.NewTestLogger(t))

		_, err := h.Execute(context.Background(), approvedInput())
		stdErr := errors.Normalize(err)
		assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
		assert.True(t, stdErr.Retryable)
		assert.Contains(t, stdErr.Details, "channel: sms")
		assert.Empty(t, email.emails)
	})

	t.Run("email failure after sms", func(t *testing.T) {
		email := &mockEmail{sendFunc: func(context.Context, aws.Email) (string, error) {
			return "", stderrors.New("MessageRejected")
		}}
		h := NewHandler(createTestConfig(), &mockSMS{}, email, nil, logger.NewTestLogger(t))

		_, err := h.Execute(context.Background(), approvedInput())
		stdErr := errors.Normalize(err)
		assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
		assert.Equal(t, true, stdErr.Metadata["smsDelivered"])
		assert.Equal(t, 3, errors.ConvertToBPMNError(stdErr).Retries)
	})
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	v, err := validation.NewValidator(registry.Default())
	require.NoError(t, err)
	h := NewHandler(createTestConfig(), nil, nil, v, logger.NewTestLogger(t))

	input, err := h.parseInput(`{"phone":"+93701234567","assessment":{"approved":false,"riskLevel":"medium","viabilityScore":55}}`)
	require.NoError(t, err)
	assert.Equal(t, 55, input.Assessment.ViabilityScore)
	assert.Equal(t, assessment.RiskMedium, input.Assessment.RiskLevel)

	_, err = h.parseInput(`{"assessment":{"approved":false,"riskLevel":"medium"}}`)
	assert.Equal(t, errors.ErrCodeNotificationValidationFailed, errors.Normalize(err).Code)
}

func TestRenderMessage_Declined(t *testing.T) {
	msg, err := renderMessage(&Input{
		ApplicantName: "Omar",
		Purpose:       "Agriculture",
		Assessment:    assessment.Result{ViabilityScore: 42, RiskLevel: assessment.RiskHigh},
	})
	require.NoError(t, err)

	assert.Equal(t, "Update on your loan application", msg.Subject)
	assert.Contains(t, msg.Email, "Dear Omar,")
	assert.Contains(t, msg.Email, "Viability score: 42 (high risk)")
	assert.NotContains(t, msg.Email, "What we considered")
}
